package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"transcripthub/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &TranscriptModel{}, &ChatModel{}, &MessageModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Create(&model).Error
}

// HasUsername checks if the username is taken.
func (s *GormStore) HasUsername(username string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByUsername looks up a user by username.
func (s *GormStore) GetUserByUsername(username string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("username = ?", username).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveTranscript stores a new transcript. Transcripts are never updated.
func (s *GormStore) SaveTranscript(t domain.Transcript) error {
	model, err := transcriptToModel(t)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetTranscript retrieves a transcript.
func (s *GormStore) GetTranscript(id string) (domain.Transcript, bool, error) {
	var model TranscriptModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Transcript{}, false, nil
		}
		return domain.Transcript{}, false, err
	}
	return transcriptFromModel(model), true, nil
}

// ListTranscriptsByOwner returns the owner's transcripts, newest first.
func (s *GormStore) ListTranscriptsByOwner(ownerID string) ([]domain.Transcript, error) {
	var models []TranscriptModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Transcript, 0, len(models))
	for _, m := range models {
		res = append(res, transcriptFromModel(m))
	}
	return res, nil
}

// SaveChat stores a chat.
func (s *GormStore) SaveChat(c domain.Chat) error {
	model := chatToModel(c)
	return s.db.Create(&model).Error
}

// GetChat retrieves a chat.
func (s *GormStore) GetChat(id string) (domain.Chat, bool, error) {
	var model ChatModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Chat{}, false, nil
		}
		return domain.Chat{}, false, err
	}
	return chatFromModel(model), true, nil
}

// ListChatsByOwner returns the owner's chats, newest first.
func (s *GormStore) ListChatsByOwner(ownerID string) ([]domain.Chat, error) {
	var models []ChatModel
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Chat, 0, len(models))
	for _, m := range models {
		res = append(res, chatFromModel(m))
	}
	return res, nil
}

// DeleteChat removes the chat and its messages in one transaction:
// messages first, then the chat, so no orphan message can survive.
func (s *GormStore) DeleteChat(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&MessageModel{}, "chat_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&ChatModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		return nil
	})
}

// AppendMessage records a message.
func (s *GormStore) AppendMessage(msg domain.Message) error {
	model := messageToModel(msg)
	return s.db.Create(&model).Error
}

// ListChatMessages returns a chat's messages in ascending creation order.
func (s *GormStore) ListChatMessages(chatID string) ([]domain.Message, error) {
	var models []MessageModel
	if err := s.db.Where("chat_id = ?", chatID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Message, 0, len(models))
	for _, m := range models {
		res = append(res, messageFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func transcriptToModel(t domain.Transcript) (TranscriptModel, error) {
	meta, err := json.Marshal(transcriptMetadata{
		VideoID:   t.VideoID,
		Language:  t.Language,
		TrackKind: t.TrackKind,
	})
	if err != nil {
		return TranscriptModel{}, fmt.Errorf("encode transcript metadata: %w", err)
	}
	return TranscriptModel{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		VideoURL:  t.VideoURL,
		Content:   t.Content,
		Metadata:  meta,
		CreatedAt: t.CreatedAt,
	}, nil
}

func transcriptFromModel(m TranscriptModel) domain.Transcript {
	var meta transcriptMetadata
	_ = json.Unmarshal(m.Metadata, &meta)
	return domain.Transcript{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		VideoURL:  m.VideoURL,
		VideoID:   meta.VideoID,
		Language:  meta.Language,
		TrackKind: meta.TrackKind,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func chatToModel(c domain.Chat) ChatModel {
	return ChatModel{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		TranscriptID: c.TranscriptID,
		Title:        c.Title,
		CreatedAt:    c.CreatedAt,
	}
}

func chatFromModel(m ChatModel) domain.Chat {
	return domain.Chat{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		TranscriptID: m.TranscriptID,
		Title:        m.Title,
		CreatedAt:    m.CreatedAt,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	return MessageModel{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	return domain.Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
