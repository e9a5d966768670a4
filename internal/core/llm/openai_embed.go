package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dimsonMba/MTSU-Connect/internal/core"
)

type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	cl := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEmbedder{client: cl, model: model}
}

// EmbedBatch embeds all texts in a single request. The caller slices its
// chunk list into batches; one call here is one call to the endpoint, and
// a failure means no text in the batch got a vector.
func (o *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return nil, &core.UpstreamError{
				Service: "embeddings",
				Status:  apierr.StatusCode,
				Body:    apierr.RawJSON(),
				Err:     err,
			}
		}
		return nil, &core.UpstreamError{Service: "embeddings", Err: err}
	}

	if len(resp.Data) != len(texts) {
		return nil, &core.UpstreamError{
			Service: "embeddings",
			Err:     fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)),
		}
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}

var _ core.EmbeddingProvider = (*OpenAIEmbedder)(nil)
