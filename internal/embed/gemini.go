package embed

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

func NewGemini(apiKey, model string, dim int) (*Gemini, error) {
	if apiKey == "" {
		return nil, &Error{Provider: "gemini", Err: errors.New("API key is required")}
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}

	if model == "" {
		model = "text-embedding-004"
	}
	if dim <= 0 {
		dim = 768
	}

	return &Gemini{
		client: client,
		model:  model,
		dim:    dim,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Dimension() int {
	return g.dim
}

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}
	if res.Embedding == nil {
		return nil, &Error{Provider: "gemini", Err: errors.New("no embedding returned")}
	}
	return res.Embedding.Values, nil
}
