package summarizer

import (
	"context"
	"errors"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

var ErrCompletion = errors.New("chat completion failed")

type Message struct {
	Role    Role
	Content string
}

// Event is one streamed completion chunk. A nil Delta means the chunk carried no text
// for that choice (role announcements, finish reasons, content filter results).
type Event struct {
	Choices []Choice
}

type Choice struct {
	Index int
	Delta *string
}

// DeltaStream is read like a scanner: Next until false, then check Err.
type DeltaStream interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

// Provider opens a streamed chat completion capped at maxTokens output tokens.
type Provider interface {
	StreamChat(ctx context.Context, messages []Message, maxTokens int64) (DeltaStream, error)
}
