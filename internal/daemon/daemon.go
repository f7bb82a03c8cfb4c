// Package daemon exposes the two model-daemon operations the interactive
// session needs, with failures turned into display values instead of errors.
package daemon

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ThatCatDev/modelinspect/internal/record"
	"github.com/ThatCatDev/modelinspect/pkg/api"
)

// Unreachable is the single selection offered when the model list cannot be
// fetched.
const Unreachable = "Error: Could not connect to Ollama. Is it running?"

// SystemKey is the configuration record key holding the system prompt.
const SystemKey = "system"

// API is the subset of the daemon HTTP client used here.
type API interface {
	ListModels(ctx context.Context) (*api.ListResponse, error)
	Show(ctx context.Context, model string) (*record.Record, error)
}

// Client wraps the daemon API with display-oriented failure handling.
type Client struct {
	api API
	log zerolog.Logger
}

// New creates a Client.
func New(a API, log zerolog.Logger) *Client {
	return &Client{api: a, log: log.With().Str("component", "daemon").Logger()}
}

// ListModels returns the identifiers of the installed models. On failure it
// returns a one-element list holding Unreachable.
func (c *Client) ListModels(ctx context.Context) []string {
	resp, err := c.api.ListModels(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("Error connecting to Ollama")
		return []string{Unreachable}
	}

	ids := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		ids = append(ids, m.Identifier())
	}
	c.log.Debug().Int("count", len(ids)).Msg("listed models")
	return ids
}

// FetchConfig returns the configuration record of model id and its system
// prompt. The record is nil when the fetch failed. ok is false when the record
// has no non-empty string under SystemKey.
func (c *Client) FetchConfig(ctx context.Context, id string) (rec *record.Record, systemPrompt string, ok bool) {
	rec, err := c.api.Show(ctx, id)
	if err != nil {
		c.log.Error().Err(err).Str("model", id).Msgf("Error getting config for %s", id)
		return nil, "", false
	}

	systemPrompt, ok = rec.String(SystemKey)
	if systemPrompt == "" {
		ok = false
	}
	return rec, systemPrompt, ok
}

// IsSentinel reports whether id is the Unreachable placeholder rather than a
// real model.
func IsSentinel(id string) bool {
	return id == Unreachable
}
