package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"transcripthub/internal/util"
	"transcripthub/pkg/ai"
	"transcripthub/pkg/auth"
	"transcripthub/pkg/domain"
	"transcripthub/pkg/events"
	"transcripthub/pkg/storage"
	"transcripthub/pkg/store"
	"transcripthub/pkg/youtube"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store

	Sessions        store.SessionStore
	SessionStrategy string // "redis" (default) or "jwt"
	RedisAddr       string
	RedisPassword   string
	JWTSecret       string
	SessionTTL      time.Duration

	Captions          *youtube.Client
	CaptionBaseURL    string
	PreferredLanguage string
	AcquireTimeout    time.Duration

	Generator       ai.Generator
	MistralBaseURL  string
	MistralAPIKey   string
	MistralModel    string
	GenerateTimeout time.Duration
	MaxConcurrent   int64

	Archive storage.Archive  // optional raw caption payload archive
	Events  events.Publisher // optional domain event publishing
}

// App wires storage, the caption provider, and the language-model gateway
// into the product operations.
type App struct {
	store    store.Store
	sessions store.SessionStore
	captions *youtube.Client
	gen      ai.Generator
	archive  storage.Archive
	events   events.Publisher

	acquireTimeout  time.Duration
	generateTimeout time.Duration
	genSlots        *semaphore.Weighted
}

// New constructs the application. Store and session backends fall back to
// constructor defaults when not injected, mirroring how tests pass fakes.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessions := cfg.Sessions
	if sessions == nil {
		ttl := cfg.SessionTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		switch strings.ToLower(strings.TrimSpace(cfg.SessionStrategy)) {
		case "", "redis":
			if cfg.RedisAddr == "" {
				return nil, fmt.Errorf("redis addr required for redis sessions")
			}
			sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, ttl)
		case "jwt":
			if cfg.JWTSecret == "" {
				return nil, fmt.Errorf("jwt secret required for jwt sessions")
			}
			var revoker store.TokenRevoker = store.NewMemoryTokenRevoker()
			if cfg.RedisAddr != "" {
				revoker = store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
			}
			var err error
			sessions, err = store.NewJWTSessionStore(cfg.JWTSecret, ttl, revoker, store.JWTOptions{})
			if err != nil {
				return nil, fmt.Errorf("init jwt sessions: %w", err)
			}
		default:
			return nil, fmt.Errorf("unknown session strategy: %s", cfg.SessionStrategy)
		}
	}

	captions := cfg.Captions
	if captions == nil {
		captions = youtube.NewClient(cfg.CaptionBaseURL, cfg.PreferredLanguage, cfg.AcquireTimeout)
	}

	gen := cfg.Generator
	if gen == nil {
		if cfg.MistralAPIKey == "" {
			return nil, fmt.Errorf("mistral API key required")
		}
		if cfg.MistralModel == "" {
			return nil, fmt.Errorf("generation model required")
		}
		gen = ai.NewMistralClient(cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.MistralModel, cfg.GenerateTimeout)
	}

	acquireTimeout := cfg.AcquireTimeout
	if acquireTimeout <= 0 {
		acquireTimeout = 30 * time.Second
	}
	generateTimeout := cfg.GenerateTimeout
	if generateTimeout <= 0 {
		generateTimeout = 60 * time.Second
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &App{
		store:           dataStore,
		sessions:        sessions,
		captions:        captions,
		gen:             gen,
		archive:         cfg.Archive,
		events:          cfg.Events,
		acquireTimeout:  acquireTimeout,
		generateTimeout: generateTimeout,
		genSlots:        semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// SignUp registers a user and opens a session for them right away.
func (a *App) SignUp(username, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, "", fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < 8 {
		return domain.User{}, "", fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	taken, err := a.store.HasUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check username: %w", err)
	}
	if taken {
		return domain.User{}, "", ErrUsernameTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           util.NewID(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and opens a session.
func (a *App) Login(username, password string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	user, ok, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("load user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return user, token, nil
}

// Logout invalidates the session token.
func (a *App) Logout(token string) error {
	if err := a.sessions.DeleteSession(token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserFromToken resolves a session token to its user.
func (a *App) UserFromToken(token string) (domain.User, bool, error) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return domain.User{}, false, nil
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("load user: %w", err)
	}
	return user, ok, nil
}

// Extract acquires captions for the video, formats them, and persists the
// transcript for the caller. The returned summary degrades to a placeholder
// when summarization fails; extraction itself is not rolled back for it.
func (a *App) Extract(ctx context.Context, user domain.User, videoURL string) (domain.Transcript, string, error) {
	videoID, err := youtube.ResolveVideoID(videoURL)
	if err != nil {
		return domain.Transcript{}, "", err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, a.acquireTimeout)
	defer cancel()
	entries, track, err := a.captions.Transcript(acquireCtx, videoID)
	if err != nil {
		if youtube.IsExpectedOutcome(err) {
			return domain.Transcript{}, "", err
		}
		return domain.Transcript{}, "", fmt.Errorf("%w: %w", ErrAcquireFailed, err)
	}

	transcript := domain.Transcript{
		ID:        util.NewID(),
		OwnerID:   user.ID,
		VideoURL:  strings.TrimSpace(videoURL),
		VideoID:   videoID,
		Language:  track.LanguageCode,
		TrackKind: track.Kind,
		Content:   youtube.FormatEntries(entries),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveTranscript(transcript); err != nil {
		return domain.Transcript{}, "", fmt.Errorf("save transcript: %w", err)
	}

	a.archiveRawTrack(ctx, transcript, track)
	a.publish(ctx, events.TypeTranscriptExtracted, transcriptEvent{
		TranscriptID: transcript.ID,
		OwnerID:      transcript.OwnerID,
		VideoID:      transcript.VideoID,
		Language:     transcript.Language,
	})

	summary, err := a.generate(ctx, buildSummaryContext(transcript))
	if err != nil {
		slog.Warn("transcript summary failed", "transcript_id", transcript.ID, "err", err)
		summary = summaryPlaceholder
	}
	return transcript, summary, nil
}

// ListTranscripts returns the caller's transcripts, newest first.
func (a *App) ListTranscripts(user domain.User) ([]domain.Transcript, error) {
	items, err := a.store.ListTranscriptsByOwner(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	return items, nil
}

// CreateChat opens a chat bound to one of the caller's transcripts.
func (a *App) CreateChat(user domain.User, transcriptID string) (domain.Chat, error) {
	transcript, ok, err := a.store.GetTranscript(transcriptID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("load transcript: %w", err)
	}
	if !ok {
		return domain.Chat{}, ErrTranscriptNotFound
	}
	if err := authorizeOwner(user, transcript.OwnerID); err != nil {
		return domain.Chat{}, err
	}
	chat := domain.Chat{
		ID:           util.NewID(),
		OwnerID:      user.ID,
		TranscriptID: transcript.ID,
		Title:        chatTitle(transcript.VideoURL),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveChat(chat); err != nil {
		return domain.Chat{}, fmt.Errorf("save chat: %w", err)
	}
	return chat, nil
}

// ChatView bundles a chat with its transcript and full message history.
type ChatView struct {
	Chat       domain.Chat       `json:"chat"`
	Transcript domain.Transcript `json:"transcript"`
	Messages   []domain.Message  `json:"messages"`
}

// GetChat returns the chat with its transcript and messages in ascending
// creation order.
func (a *App) GetChat(user domain.User, chatID string) (ChatView, error) {
	chat, ok, err := a.store.GetChat(chatID)
	if err != nil {
		return ChatView{}, fmt.Errorf("load chat: %w", err)
	}
	if !ok {
		return ChatView{}, ErrChatNotFound
	}
	if err := authorizeOwner(user, chat.OwnerID); err != nil {
		return ChatView{}, err
	}
	transcript, ok, err := a.store.GetTranscript(chat.TranscriptID)
	if err != nil {
		return ChatView{}, fmt.Errorf("load transcript: %w", err)
	}
	if !ok {
		return ChatView{}, fmt.Errorf("chat %s references missing transcript %s", chat.ID, chat.TranscriptID)
	}
	messages, err := a.store.ListChatMessages(chat.ID)
	if err != nil {
		return ChatView{}, fmt.Errorf("list messages: %w", err)
	}
	return ChatView{Chat: chat, Transcript: transcript, Messages: messages}, nil
}

// ListChats returns the caller's chats, newest first.
func (a *App) ListChats(user domain.User) ([]domain.Chat, error) {
	items, err := a.store.ListChatsByOwner(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return items, nil
}

// DeleteChat removes the chat and its messages as one unit of work.
func (a *App) DeleteChat(ctx context.Context, user domain.User, chatID string) error {
	chat, ok, err := a.store.GetChat(chatID)
	if err != nil {
		return fmt.Errorf("load chat: %w", err)
	}
	if !ok {
		return ErrChatNotFound
	}
	if err := authorizeOwner(user, chat.OwnerID); err != nil {
		return err
	}
	if err := a.store.DeleteChat(chat.ID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	a.publish(ctx, events.TypeChatDeleted, chatEvent{ChatID: chat.ID, OwnerID: chat.OwnerID})
	return nil
}

// SendMessage appends the user turn, asks the gateway for a grounded reply,
// and appends the assistant turn. The user turn is persisted before the
// gateway call, so a gateway fault leaves the question in history.
func (a *App) SendMessage(ctx context.Context, user domain.User, chatID, content string) (domain.Message, domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, domain.Message{}, fmt.Errorf("%w: content is required", ErrValidation)
	}
	chat, ok, err := a.store.GetChat(chatID)
	if err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("load chat: %w", err)
	}
	if !ok {
		return domain.Message{}, domain.Message{}, ErrChatNotFound
	}
	if err := authorizeOwner(user, chat.OwnerID); err != nil {
		return domain.Message{}, domain.Message{}, err
	}
	transcript, ok, err := a.store.GetTranscript(chat.TranscriptID)
	if err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("load transcript: %w", err)
	}
	if !ok {
		return domain.Message{}, domain.Message{}, fmt.Errorf("chat %s references missing transcript %s", chat.ID, chat.TranscriptID)
	}

	userMsg := domain.Message{
		ID:        util.NewID(),
		ChatID:    chat.ID,
		Role:      domain.RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendMessage(userMsg); err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("save user message: %w", err)
	}

	history, err := a.store.ListChatMessages(chat.ID)
	if err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("load history: %w", err)
	}
	reply, err := a.generate(ctx, buildChatContext(transcript, history))
	if err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	assistantMsg := domain.Message{
		ID:        util.NewID(),
		ChatID:    chat.ID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendMessage(assistantMsg); err != nil {
		return domain.Message{}, domain.Message{}, fmt.Errorf("save assistant message: %w", err)
	}
	a.publish(ctx, events.TypeChatMessage, chatEvent{ChatID: chat.ID, OwnerID: chat.OwnerID})
	return userMsg, assistantMsg, nil
}

// generate caps both concurrency and wall time of gateway calls.
func (a *App) generate(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	if err := a.genSlots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer a.genSlots.Release(1)
	ctx, cancel := context.WithTimeout(ctx, a.generateTimeout)
	defer cancel()
	return a.gen.Generate(ctx, messages)
}

// archiveRawTrack stores the provider payload verbatim. Best effort; an
// archive fault never fails the extraction.
func (a *App) archiveRawTrack(ctx context.Context, transcript domain.Transcript, track youtube.Track) {
	if a.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	raw, err := a.captions.RawTrack(ctx, track)
	if err != nil {
		slog.Warn("caption archive fetch failed", "transcript_id", transcript.ID, "err", err)
		return
	}
	key := "captions/" + transcript.ID + ".xml"
	if err := a.archive.Store(ctx, key, raw, "application/xml"); err != nil {
		slog.Warn("caption archive store failed", "transcript_id", transcript.ID, "err", err)
	}
}

// publish emits a domain event. Best effort.
func (a *App) publish(ctx context.Context, eventType string, payload any) {
	if a.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.events.Publish(ctx, eventType, payload); err != nil {
		slog.Warn("event publish failed", "type", eventType, "err", err)
	}
}

func chatTitle(videoURL string) string {
	title := "Chat: " + strings.TrimSpace(videoURL)
	runes := []rune(title)
	if len(runes) > 80 {
		return string(runes[:80]) + "…"
	}
	return title
}

type transcriptEvent struct {
	TranscriptID string `json:"transcriptId"`
	OwnerID      string `json:"ownerId"`
	VideoID      string `json:"videoId"`
	Language     string `json:"language"`
}

type chatEvent struct {
	ChatID  string `json:"chatId"`
	OwnerID string `json:"ownerId"`
}
