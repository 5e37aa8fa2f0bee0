// Package llmclient wraps the model backends that can produce optimization
// suggestions. Clients only focus on the API call itself; the suggestion
// engine owns timeouts, parsing, and the fallback path.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

// Client generates a JSON document from a prompt plus a JSON-encodable
// input payload.
type Client interface {
	Name() string
	Close() error
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}

// ErrNoContent is returned when the backend answered but produced no usable
// JSON payload.
var ErrNoContent = errors.New("llmclient: model returned no JSON content")
