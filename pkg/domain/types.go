package domain

import "time"

// Message roles. The system never writes any other value.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Transcript is the persisted artifact of one caption extraction.
// Content is immutable after creation.
type Transcript struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	VideoURL  string    `json:"videoUrl"`
	VideoID   string    `json:"videoId"`
	Language  string    `json:"language"`
	TrackKind string    `json:"trackKind,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Chat struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	TranscriptID string    `json:"transcriptId"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
