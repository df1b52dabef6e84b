package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiProvider implements Completer and Embedder using the Google
// Gemini API.
type GeminiProvider struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	dim            int
}

// NewGeminiProvider creates a Gemini provider. Like the OpenAI provider
// it degrades to a disabled instance when no key is available.
func NewGeminiProvider(ctx context.Context, apiKey, chatModel, embeddingModel string) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("Gemini API key not provided. Gemini provider will be disabled.")
		return &GeminiProvider{chatModel: chatModel, embeddingModel: embeddingModel}, nil
	}

	var dim int
	switch embeddingModel {
	case "models/embedding-001", "models/text-embedding-004":
		dim = 768
	default:
		log.Warnf("Unknown Gemini embedding model %q, defaulting dimension to 768.", embeddingModel)
		dim = 768
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	log.Infof("Gemini provider initialized (chat=%s embedding=%s dim=%d)", chatModel, embeddingModel, dim)
	return &GeminiProvider{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dim:            dim,
	}, nil
}

func (p *GeminiProvider) Name() string      { return "gemini" }
func (p *GeminiProvider) ModelName() string { return p.chatModel }
func (p *GeminiProvider) Dimension() int    { return p.dim }
func (p *GeminiProvider) Enabled() bool     { return p.client != nil }

func (p *GeminiProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("Gemini provider is not initialized (missing API key)")
	}
	model := p.client.GenerativeModel(p.chatModel)

	// Gemini has no first-class system role on this path; fold system
	// messages into the prompt ahead of the user turns.
	var prompt strings.Builder
	for _, m := range messages {
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(m.Content)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return "", fmt.Errorf("Gemini content generation: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("Gemini returned no candidates")
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return out.String(), nil
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if p.client == nil {
		return nil, fmt.Errorf("Gemini provider is not initialized (missing API key)")
	}
	em := p.client.EmbeddingModel(p.embeddingModel)
	vecs := make([]pgvector.Vector, len(texts))
	for i, text := range texts {
		res, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, fmt.Errorf("Gemini API error generating embedding: %w", err)
		}
		if res.Embedding == nil {
			return nil, fmt.Errorf("Gemini returned empty embedding")
		}
		vecs[i] = pgvector.NewVector(res.Embedding.Values)
	}
	return vecs, nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

var (
	_ Completer = (*GeminiProvider)(nil)
	_ Embedder  = (*GeminiProvider)(nil)
)
