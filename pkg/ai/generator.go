package ai

import "context"

// ChatMessage is one role-tagged turn in a conversation context.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a completion for an ordered conversation context.
type Generator interface {
	Generate(ctx context.Context, messages []ChatMessage) (string, error)
}
