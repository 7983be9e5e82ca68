package embedding

import (
	"fmt"

	"github.com/hyperjump/jurisearch/internal/models"
)

// ONNXConfig configures the local ONNX sentence-embedding model.
type ONNXConfig struct {
	ModelPath         string
	SharedLibraryPath string
	Dimensions        int
	MaxTokens         int
	OutputName        string
}

func (c ONNXConfig) validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("%w: onnx embedder requires model_path", models.ErrUnsupportedStrategy)
	}
	if c.Dimensions <= 0 || c.MaxTokens <= 2 {
		return fmt.Errorf("%w: onnx embedder requires dimensions and max_tokens", models.ErrUnsupportedStrategy)
	}
	return nil
}

func (c ONNXConfig) outputName() string {
	if c.OutputName == "" {
		return "output"
	}
	return c.OutputName
}

// PretrainedConfig selects and configures a pretrained embedding model.
type PretrainedConfig struct {
	Strategy  Strategy
	HTTP      HTTPConfig
	ONNX      ONNXConfig
	CacheSize int
}

// NewPretrained constructs the pretrained embedder named by cfg.Strategy, wrapped in a
// query cache. The TF strategy has no pretrained model and returns ErrUnsupportedStrategy.
func NewPretrained(cfg PretrainedConfig) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch cfg.Strategy {
	case StrategyHTTP:
		e, err = NewHTTPEmbedder(cfg.HTTP)
	case StrategyONNX:
		e, err = NewONNXEmbedder(cfg.ONNX)
	default:
		return nil, fmt.Errorf("%w: %q is not a pretrained strategy", models.ErrUnsupportedStrategy, cfg.Strategy)
	}
	if err != nil {
		return nil, err
	}
	return NewCachedEmbedder(e, cfg.CacheSize), nil
}
