package llm

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// Role of a chat message sender (system, user, assistant).
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant" // "model" for Gemini
)

// Message is a single message in a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// Completer generates chat completions. Implementations are opaque
// network calls; callers treat them as non-preemptible.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Name() string      // provider name, e.g. "openai", "gemini"
	ModelName() string // specific model used
}

// Embedder turns text into vectors for similarity retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Dimension() int
}
