package utils

import "chatdoc-be/pkg/apperror"

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// SplitText cuts text into windows of chunkSize characters, each starting
// chunkSize-overlap characters after the previous one. The last window is
// truncated at the end of the text, never padded. Characters are runes so
// multi-byte text is never cut mid-codepoint.
func SplitText(text string, chunkSize int, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, apperror.InvalidInput("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, apperror.InvalidInput("overlap must be in [0, %d), got %d", chunkSize, overlap)
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	totalLen := len(runes)
	step := chunkSize - overlap

	var chunks []string
	for start := 0; start < totalLen; start += step {
		end := start + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[start:end]))

		if end == totalLen {
			break
		}
	}

	return chunks, nil
}
