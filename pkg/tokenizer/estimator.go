// Package tokenizer estimates token counts for stored chunks.
package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

type Estimator interface {
	CountTokens(text string) int
}

// TiktokenEstimator counts cl100k_base tokens.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	tiktokenInstance *TiktokenEstimator
	tiktokenOnce     sync.Once
	tiktokenErr      error
)

func GetTiktokenEstimator() (*TiktokenEstimator, error) {
	tiktokenOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			tiktokenErr = err
			return
		}
		tiktokenInstance = &TiktokenEstimator{encoding: enc}
	})

	if tiktokenErr != nil {
		return nil, tiktokenErr
	}
	return tiktokenInstance, nil
}

func (e *TiktokenEstimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.encoding.Encode(text, nil, nil))
}

// CharEstimator approximates one token per four bytes, rounded up.
type CharEstimator struct{}

func (CharEstimator) CountTokens(text string) int {
	return (len(text) + 3) / 4
}

// NewEstimator prefers tiktoken and falls back to the character heuristic
// when the encoding cannot be loaded.
func NewEstimator() Estimator {
	if est, err := GetTiktokenEstimator(); err == nil {
		return est
	}
	return CharEstimator{}
}
