package store

import "transcripthub/pkg/domain"

// Store defines persistence operations for users, transcripts, chats, and
// messages. Reads return an explicit found flag; every operation reports
// its failure instead of swallowing it, so callers decide per call whether
// a fault is recoverable.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUsername(username string) (bool, error)
	GetUserByUsername(username string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// transcripts (immutable after creation)
	SaveTranscript(domain.Transcript) error
	GetTranscript(id string) (domain.Transcript, bool, error)
	ListTranscriptsByOwner(ownerID string) ([]domain.Transcript, error)

	// chats
	SaveChat(domain.Chat) error
	GetChat(id string) (domain.Chat, bool, error)
	ListChatsByOwner(ownerID string) ([]domain.Chat, error)
	// DeleteChat removes the chat and all of its messages in one unit of
	// work; no orphan messages may remain.
	DeleteChat(id string) error

	// messages (append-only, ordered by creation time)
	AppendMessage(domain.Message) error
	ListChatMessages(chatID string) ([]domain.Message, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
