// Package app wires configuration into a runnable server: store, object
// storage, model client, suggestion engine, service, and routes.
package app

import (
	"context"
	"log"
	"net/http"

	"greenlens/internal/analysis"
	"greenlens/internal/artifact"
	"greenlens/internal/config"
	"greenlens/internal/events"
	"greenlens/internal/handler"
	"greenlens/internal/history"
	"greenlens/internal/llmclient"
	"greenlens/internal/server"
	"greenlens/internal/service"
	"greenlens/internal/suggest"
)

type App struct {
	Config *config.Config
	Mux    http.Handler

	store  history.Store
	client llmclient.Client
}

// New builds the full dependency graph. Optional backends degrade rather
// than fail: no database means in-memory history, no provider means
// fallback-only suggestions, no object storage means archives are not kept.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store := newStore(cfg)
	client := newLLMClient(ctx, cfg)

	var artifacts artifact.Store
	if cfg.Artifact.Enabled {
		s3, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.Printf("app: object storage disabled: %v", err)
		} else {
			artifacts = s3
		}
	}

	engine := suggest.NewEngine(client, cfg.LLM.Timeout)
	hub := events.NewHub()
	svc := service.New(engine, store, artifacts, hub, analysis.EmissionFactor(cfg.Region))
	mux := server.NewMux(handler.New(svc))

	return &App{Config: cfg, Mux: mux, store: store, client: client}, nil
}

func (a *App) Shutdown() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			log.Printf("app: model client close failed: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		log.Printf("app: store close failed: %v", err)
	}
}

func newStore(cfg *config.Config) history.Store {
	if cfg.DatabaseURL == "" {
		log.Printf("app: DATABASE_URL not set, using in-memory history")
		return history.NewMemoryStore()
	}
	store, err := history.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Printf("app: postgres unavailable, using in-memory history: %v", err)
		return history.NewMemoryStore()
	}
	return store
}

func newLLMClient(ctx context.Context, cfg *config.Config) llmclient.Client {
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := llmclient.NewGeminiClient(ctx, cfg.LLM.Model)
		if err != nil {
			log.Printf("app: gemini unavailable, suggestions use fallback: %v", err)
			return nil
		}
		return client
	case "ollama":
		return llmclient.NewOllamaClient(cfg.LLM.OllamaBaseURL, cfg.LLM.Model)
	case "":
		log.Printf("app: LLM_PROVIDER not set, suggestions use fallback")
		return nil
	default:
		log.Printf("app: unknown LLM_PROVIDER %q, suggestions use fallback", cfg.LLM.Provider)
		return nil
	}
}
