package suggest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"greenlens/internal/llmclient"
)

const defaultTimeout = 20 * time.Second

// Engine orchestrates one suggestion call: model with a hard timeout,
// fallback on any failure, and an LRU memo so identical snippets skip the
// backend entirely.
type Engine struct {
	client  llmclient.Client // nil means fallback-only
	timeout time.Duration
	memo    *lru.Cache[string, Suggestion]
}

func NewEngine(client llmclient.Client, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	memo, _ := lru.New[string, Suggestion](256)
	return &Engine{client: client, timeout: timeout, memo: memo}
}

// Suggest never returns an error: every failure path degrades to the
// deterministic fallback, tagged used_fallback=true.
func (e *Engine) Suggest(ctx context.Context, req Request) Suggestion {
	key := memoKey(req)
	if cached, ok := e.memo.Get(key); ok {
		return cached
	}

	out := e.generate(ctx, req)
	e.memo.Add(key, out)
	return out
}

func (e *Engine) generate(ctx context.Context, req Request) Suggestion {
	if e.client == nil {
		return Fallback(req.Code)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.client.GenerateJSON(ctx, buildPrompt(req.Language), promptInput{
		Code:     req.Code,
		Language: req.Language,
		Metrics:  req.Before,
	})
	if err != nil {
		log.Printf("suggest: %s failed, using fallback: %v", e.client.Name(), err)
		return Fallback(req.Code)
	}

	parsed, err := parseSuggestion(raw, req.Code)
	if err != nil {
		log.Printf("suggest: %s returned unparsable output, using fallback", e.client.Name())
		return Fallback(req.Code)
	}
	parsed.AIModelUsed = e.client.Name()
	return parsed
}

func memoKey(req Request) string {
	return fmt.Sprintf("%s:%x", req.Language, xxhash.Sum64String(req.Code))
}
