package embed

import (
	"context"
	"fmt"
)

// Embedder turns text into a fixed-size vector.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the length of the vectors this embedder produces.
	Dimension() int

	// Name returns the embedder identifier (e.g., "hash", "openai").
	Name() string
}

// Error reports a failed embedding call so callers can tell provider
// trouble apart from store trouble.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s embedding failed: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config selects and parameterizes an embedder.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	Dimension int
}

// New builds the embedder named by cfg.Provider. An empty provider
// falls back to the local hash embedder, which needs no network or key.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "", "hash":
		return NewHash(cfg.Dimension), nil
	case "ollama":
		return NewOllama(cfg.Model, cfg.Dimension)
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimension)
	case "gemini":
		return NewGemini(cfg.APIKey, cfg.Model, cfg.Dimension)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Provider)
	}
}

// Static returns the same vector for every text. It exists for tests
// and dry runs.
type Static struct {
	Vector []float32
}

func (s *Static) Embed(ctx context.Context, text string) ([]float32, error) {
	out := make([]float32, len(s.Vector))
	copy(out, s.Vector)
	return out, nil
}

func (s *Static) Dimension() int {
	return len(s.Vector)
}

func (s *Static) Name() string {
	return "static"
}
