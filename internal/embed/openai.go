package embed

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

var openaiDims = map[string]int{
	string(openai.SmallEmbedding3): 1536,
	string(openai.LargeEmbedding3): 3072,
	string(openai.AdaEmbeddingV2):  1536,
}

type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

func NewOpenAI(apiKey, baseURL, model string, dim int) (*OpenAI, error) {
	if apiKey == "" {
		return nil, &Error{Provider: "openai", Err: errors.New("API key is required")}
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)

	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dim <= 0 {
		if known, ok := openaiDims[model]; ok {
			dim = known
		} else {
			dim = 1536
		}
	}

	return &OpenAI{
		client: client,
		model:  model,
		dim:    dim,
	}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Dimension() int {
	return o.dim
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(
		ctx,
		openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(o.model),
		},
	)
	if err != nil {
		return nil, &Error{Provider: "openai", Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &Error{Provider: "openai", Err: errors.New("no embedding returned")}
	}
	return resp.Data[0].Embedding, nil
}
