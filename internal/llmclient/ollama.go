package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaClient calls a local Ollama server's generate endpoint in JSON mode.
type OllamaClient struct {
	http    *http.Client
	model   string
	baseURL string
}

// NewOllamaClient creates an Ollama client. If baseURL is empty, it falls
// back to the OLLAMA_BASE_URL env var, then the default local address.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	}
	if model == "" {
		model = "deepseek-coder:1.3b"
	}
	return &OllamaClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (o *OllamaClient) Name() string { return "ollama:" + o.model }
func (o *OllamaClient) Close() error { return nil }

type ollamaGenerateReq struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResp struct {
	Response string `json:"response"`
}

// GenerateJSON sends prompt plus input as one generate request with
// format=json and returns the raw response body.
func (o *OllamaClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	reqBody := ollamaGenerateReq{
		Model:  o.model,
		Prompt: prompt + "\n\n[INPUT JSON]\n" + string(in),
		Stream: false,
		Format: "json",
		Options: map[string]any{
			"temperature": 0.2,
			"num_predict": 600,
		},
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llmclient: ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out ollamaGenerateResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Response) == "" {
		return nil, ErrNoContent
	}
	return json.RawMessage(out.Response), nil
}
