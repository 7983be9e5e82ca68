package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/jurisearch/internal/extract"
)

func TestWriteMinimalFile_AllExtensionsExtractable(t *testing.T) {
	e := extract.NewExtractor()
	sample := "The tenant shall pay rent quarterly in advance."
	for _, ext := range SupportedFileExtensions {
		t.Run(ext, func(t *testing.T) {
			content, err := WriteMinimalFile(ext, sample)
			require.NoError(t, err)
			require.NotEmpty(t, content)
			got, err := e.ExtractBytes(content, ext)
			require.NoError(t, err)
			assert.Contains(t, got, sample)
		})
	}
}
