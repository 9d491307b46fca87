package store

import (
	"testing"
	"time"

	"transcripthub/pkg/domain"
)

func TestMemoryStoreDeleteChatCascades(t *testing.T) {
	s := NewMemoryStore()
	chat := domain.Chat{ID: "chat-1", OwnerID: "user-1", TranscriptID: "tr-1", Title: "t", CreatedAt: time.Now().UTC()}
	if err := s.SaveChat(chat); err != nil {
		t.Fatalf("save chat: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.AppendMessage(domain.Message{ID: string(rune('a' + i)), ChatID: chat.ID, Role: domain.RoleUser, Content: "x", CreatedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("append message: %v", err)
		}
	}

	if err := s.DeleteChat(chat.ID); err != nil {
		t.Fatalf("delete chat: %v", err)
	}
	if _, ok, _ := s.GetChat(chat.ID); ok {
		t.Fatalf("chat should be gone")
	}
	msgs, err := s.ListChatMessages(chat.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("messages should cascade with the chat, got %d", len(msgs))
	}
}

func TestMemoryStoreListChatsByOwnerNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now().UTC()
	for i, id := range []string{"c1", "c2", "c3"} {
		chat := domain.Chat{ID: id, OwnerID: "user-1", TranscriptID: "tr-1", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.SaveChat(chat); err != nil {
			t.Fatalf("save chat: %v", err)
		}
	}
	if err := s.SaveChat(domain.Chat{ID: "other", OwnerID: "user-2", TranscriptID: "tr-2", CreatedAt: base}); err != nil {
		t.Fatalf("save chat: %v", err)
	}

	chats, err := s.ListChatsByOwner("user-1")
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 3 {
		t.Fatalf("len(chats) = %d, want 3", len(chats))
	}
	if chats[0].ID != "c3" || chats[2].ID != "c1" {
		t.Fatalf("chats not newest-first: %v, %v, %v", chats[0].ID, chats[1].ID, chats[2].ID)
	}
}
