package embed

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/ollama/ollama/api"
)

var ollamaDims = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

type Ollama struct {
	client *api.Client
	model  string
	dim    int
}

func NewOllama(model string, dim int) (*Ollama, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	if dim <= 0 {
		if known, ok := ollamaDims[model]; ok {
			dim = known
		} else {
			dim = 768
		}
	}

	baseURL := "http://localhost:11434"
	if envURL := os.Getenv("OLLAMA_HOST"); envURL != "" {
		baseURL = envURL
	}
	uri, err := url.Parse(baseURL)
	if err != nil {
		return nil, &Error{Provider: "ollama", Err: err}
	}
	client := api.NewClient(uri, http.DefaultClient)

	return &Ollama{
		client: client,
		model:  model,
		dim:    dim,
	}, nil
}

func (o *Ollama) Name() string {
	return "ollama"
}

func (o *Ollama) Dimension() int {
	return o.dim
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	req := &api.EmbeddingRequest{
		Model:  o.model,
		Prompt: text,
	}
	resp, err := o.client.Embeddings(ctx, req)
	if err != nil {
		return nil, &Error{Provider: "ollama", Err: err}
	}
	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
