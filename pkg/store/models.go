package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type TranscriptModel struct {
	ID       string `gorm:"primaryKey"`
	OwnerID  string `gorm:"not null;index"`
	VideoURL string `gorm:"not null"`
	Content  string `gorm:"type:text;not null"`
	// Metadata carries provider details of the extraction: video id,
	// caption language, track kind.
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

type ChatModel struct {
	ID           string    `gorm:"primaryKey"`
	OwnerID      string    `gorm:"not null;index"`
	TranscriptID string    `gorm:"not null;index"`
	Title        string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

type MessageModel struct {
	ID        string    `gorm:"primaryKey"`
	ChatID    string    `gorm:"not null;index"`
	Role      string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// transcriptMetadata is the JSON shape stored in TranscriptModel.Metadata.
type transcriptMetadata struct {
	VideoID   string `json:"video_id"`
	Language  string `json:"language"`
	TrackKind string `json:"track_kind,omitempty"`
}
