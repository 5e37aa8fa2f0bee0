// Package service orchestrates one analysis request end to end: scoring,
// suggestion, delta, CO2 projection, measured session emissions,
// persistence, and the live event feed.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"greenlens/internal/artifact"
	"greenlens/internal/events"
	"greenlens/internal/history"
	"greenlens/internal/suggest"
)

// ErrInvalidInput covers missing/empty code and unsupported language tokens.
// It is the only snippet-mode error surfaced to the caller.
var ErrInvalidInput = errors.New("invalid input")

// Service handles analysis requests. One request is processed synchronously;
// the service holds no per-request state.
type Service struct {
	engine         *suggest.Engine
	store          history.Store
	artifacts      artifact.Store // nil when object storage is disabled
	hub            *events.Hub
	emissionFactor float64
}

func New(engine *suggest.Engine, store history.Store, artifacts artifact.Store, hub *events.Hub, emissionFactor float64) *Service {
	if emissionFactor <= 0 {
		emissionFactor = 0.475
	}
	return &Service{
		engine:         engine,
		store:          store,
		artifacts:      artifacts,
		hub:            hub,
		emissionFactor: emissionFactor,
	}
}

// History returns the most recent stored analyses, newest first.
func (s *Service) History(ctx context.Context, n int) ([]history.Record, error) {
	return s.store.Recent(ctx, n)
}

// Dashboard returns the stored aggregates for the dashboard view.
func (s *Service) Dashboard(ctx context.Context) (history.Dashboard, error) {
	return s.store.Dashboard(ctx)
}

// Subscribe attaches a live-event listener.
func (s *Service) Subscribe() (<-chan events.Event, func()) {
	return s.hub.Subscribe()
}

func newAnalysisID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}
