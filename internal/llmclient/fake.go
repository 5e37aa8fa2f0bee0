package llmclient

import (
	"context"
	"encoding/json"
	"time"
)

// FakeClient returns scripted responses for offline use and tests. Delay, if
// set, is applied before each response and respects context cancellation, so
// tests can force the timeout path deterministically.
type FakeClient struct {
	Responses []json.RawMessage
	Err       error
	Delay     time.Duration
}

func (f *FakeClient) Name() string { return "fake" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Responses) == 0 {
		return nil, ErrNoContent
	}
	out := f.Responses[0]
	f.Responses = f.Responses[1:]
	return out, nil
}
