package view

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/linanwx/scout/logger"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// TokenCount estimates how many cl100k tokens s holds. It falls back to a
// word count if the codec cannot be loaded.
func TokenCount(s string) int {
	if s == "" {
		return 0
	}
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			logger.Warn("tokenizer unavailable", "err", err)
			return
		}
		codec = c
	})
	if codec == nil {
		return len(strings.Fields(s))
	}
	ids, _, err := codec.Encode(s)
	if err != nil {
		return len(strings.Fields(s))
	}
	return len(ids)
}
