package store

import (
	"sync"

	"transcripthub/internal/util"
	"transcripthub/pkg/domain"
)

// MemoryStore keeps all records in-process. Used in tests and for local
// development without Postgres.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	usernames   map[string]string // username -> user ID
	transcripts map[string]domain.Transcript
	chats       map[string]domain.Chat
	messages    map[string][]domain.Message // chat ID -> append order
	order       []string                    // transcript/chat insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]domain.User),
		usernames:   make(map[string]string),
		transcripts: make(map[string]domain.Transcript),
		chats:       make(map[string]domain.Chat),
		messages:    make(map[string][]domain.Message),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.usernames[u.Username] = u.ID
	return nil
}

func (m *MemoryStore) HasUsername(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.usernames[username]
	return ok, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usernames[username]
	if !ok {
		return domain.User{}, false, nil
	}
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *MemoryStore) SaveTranscript(t domain.Transcript) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.transcripts[t.ID]; !exists {
		m.order = append(m.order, t.ID)
	}
	m.transcripts[t.ID] = t
	return nil
}

func (m *MemoryStore) GetTranscript(id string) (domain.Transcript, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transcripts[id]
	return t, ok, nil
}

// ListTranscriptsByOwner returns the owner's transcripts, newest first.
func (m *MemoryStore) ListTranscriptsByOwner(ownerID string) ([]domain.Transcript, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Transcript
	for i := len(m.order) - 1; i >= 0; i-- {
		if t, ok := m.transcripts[m.order[i]]; ok && t.OwnerID == ownerID {
			res = append(res, t)
		}
	}
	return res, nil
}

func (m *MemoryStore) SaveChat(c domain.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.chats[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	m.chats[c.ID] = c
	return nil
}

func (m *MemoryStore) GetChat(id string) (domain.Chat, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chats[id]
	return c, ok, nil
}

// ListChatsByOwner returns the owner's chats, newest first.
func (m *MemoryStore) ListChatsByOwner(ownerID string) ([]domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Chat
	for i := len(m.order) - 1; i >= 0; i-- {
		if c, ok := m.chats[m.order[i]]; ok && c.OwnerID == ownerID {
			res = append(res, c)
		}
	}
	return res, nil
}

// DeleteChat removes the chat and every message under it.
func (m *MemoryStore) DeleteChat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, id)
	delete(m.messages, id)
	return nil
}

func (m *MemoryStore) AppendMessage(msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], msg)
	return nil
}

// ListChatMessages returns messages in append order, which matches
// ascending creation time for sequential writers.
func (m *MemoryStore) ListChatMessages(chatID string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[chatID]
	res := make([]domain.Message, len(msgs))
	copy(res, msgs)
	return res, nil
}

// MemorySessionStore keeps session tokens in-process.
type MemorySessionStore struct {
	mu   sync.Mutex
	sess map[string]string // token -> user ID
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]string)}
}

func (s *MemorySessionStore) NewSession(userID string) (string, error) {
	token := util.NewID()
	s.mu.Lock()
	s.sess[token] = userID
	s.mu.Unlock()
	return token, nil
}

func (s *MemorySessionStore) GetUserIDByToken(token string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sess[token]
	return uid, ok, nil
}

func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	delete(s.sess, token)
	s.mu.Unlock()
	return nil
}
