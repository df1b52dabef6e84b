package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// OpenAIProvider implements Completer and Embedder using the OpenAI API.
type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dim            int
}

// NewOpenAIProvider creates an OpenAI provider. With no API key the
// provider is returned disabled and errors at call time instead of at
// startup.
func NewOpenAIProvider(apiKey, chatModel, embeddingModel string) *OpenAIProvider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("OpenAI API key not provided. OpenAI provider will be disabled.")
		return &OpenAIProvider{chatModel: chatModel, embeddingModel: openai.EmbeddingModel(embeddingModel)}
	}

	var dim int
	switch embeddingModel {
	case string(openai.AdaEmbeddingV2), "text-embedding-3-small":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	default:
		log.Warnf("Unknown OpenAI embedding model %q, defaulting dimension to 1536.", embeddingModel)
		dim = 1536
	}

	log.Infof("OpenAI provider initialized (chat=%s embedding=%s dim=%d)", chatModel, embeddingModel, dim)
	return &OpenAIProvider{
		client:         openai.NewClient(apiKey),
		chatModel:      chatModel,
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		dim:            dim,
	}
}

func (p *OpenAIProvider) Name() string      { return "openai" }
func (p *OpenAIProvider) ModelName() string { return p.chatModel }
func (p *OpenAIProvider) Dimension() int    { return p.dim }

// Enabled reports whether the provider has a usable client.
func (p *OpenAIProvider) Enabled() bool { return p.client != nil }

func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("OpenAI provider is not initialized (missing API key)")
	}
	req := openai.ChatCompletionRequest{
		Model:    p.chatModel,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if p.client == nil {
		return nil, fmt.Errorf("OpenAI provider is not initialized (missing API key)")
	}
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: p.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error generating embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([]pgvector.Vector, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = pgvector.NewVector(d.Embedding)
	}
	return vecs, nil
}

var (
	_ Completer = (*OpenAIProvider)(nil)
	_ Embedder  = (*OpenAIProvider)(nil)
)
