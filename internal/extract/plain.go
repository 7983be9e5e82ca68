package extract

import "unicode/utf8"

// extractPlain returns content as a string. A file that is not valid UTF-8 is a decode
// error so the loader can skip it rather than index replacement characters.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", ErrInvalidEncoding
	}
	// Strip a UTF-8 byte order mark.
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}
	return normalizeNewlines(string(content)), nil
}
