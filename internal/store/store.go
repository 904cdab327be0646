// Package store owns the in-memory chat collection and is its only
// mutator. Every mutation re-sorts the collection and rewrites it
// through the persistence adapter. All entry points are serialized
// behind a single mutex, mirroring the single logical thread of
// control the UI provides.
package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/models"
	"github.com/telechat/telechat/internal/profile"
	"github.com/telechat/telechat/internal/storage"
)

// Greeting is the first message of a fresh installation, authored by
// the AI identity.
const Greeting = "Hi! I'm your AI assistant. How can I help?"

// Responder produces a reply for a prompt. It is total: failures come
// back as text.
type Responder interface {
	Respond(ctx context.Context, prompt string) string
}

type Store struct {
	mu sync.Mutex

	currentUser models.User
	aiUser      models.User

	chats          []models.Chat
	selectedChatID string
	searchTerm     string

	adapter *storage.Adapter
	gateway Responder
	logger  *zap.SugaredLogger
}

func New(currentUser models.User, adapter *storage.Adapter, gateway Responder, logger *zap.SugaredLogger) *Store {
	return &Store{
		currentUser: currentUser,
		aiUser:      profile.AIUser(),
		adapter:     adapter,
		gateway:     gateway,
		logger:      logger,
	}
}

// Initialize adopts the persisted collection, or synthesizes the
// default AI chat with a greeting when nothing is stored. Runs once
// per session.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.adapter.Load()
	if err != nil {
		return err
	}

	if chats != nil {
		s.chats = chats
		return nil
	}

	chatID := newChatID()
	greeting := models.Message{
		ID:        newMessageID(),
		ChatID:    chatID,
		SenderID:  s.aiUser.ID,
		Text:      Greeting,
		Timestamp: time.Now().UnixMilli(),
		Type:      models.MessageText,
	}
	s.chats = []models.Chat{{
		ID:           chatID,
		Type:         models.ChatTypeAI,
		Participants: []models.User{s.currentUser, s.aiUser},
		Messages:     []models.Message{greeting},
		LastMessage:  &greeting,
		UnreadCount:  1,
	}}
	s.persistLocked()
	return nil
}

// SelectChat marks a chat as the selected one and clears its unread
// counter. An unknown id leaves the store untouched.
func (s *Store) SelectChat(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectChatLocked(chatID)
}

func (s *Store) selectChatLocked(chatID string) {
	chat := s.findLocked(chatID)
	if chat == nil {
		return
	}
	s.selectedChatID = chatID
	chat.UnreadCount = 0
	s.persistLocked()
}

// CreateChat creates and selects a new chat of the given kind. An AI
// chat is a singleton: a second request selects the existing one.
func (s *Store) CreateChat(kind models.ChatType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counterpart models.User

	if kind == models.ChatTypeAI {
		for _, chat := range s.chats {
			if chat.Type == models.ChatTypeAI && chat.HasParticipant(s.aiUser.ID) {
				s.selectChatLocked(chat.ID)
				return
			}
		}
		counterpart = s.aiUser
	} else {
		millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
		digits := millis[len(millis)-6:]
		counterpart = models.User{
			ID:   "user-" + digits,
			Name: "Companion " + digits[:3],
		}
		// Never create two chats with the same counterpart id. The
		// instant-derived id makes this branch unreachable in normal
		// operation, but the contract stands.
		for _, chat := range s.chats {
			if chat.Type == models.ChatTypeUser && chat.HasParticipant(counterpart.ID) {
				s.selectChatLocked(chat.ID)
				return
			}
		}
	}

	newChat := models.Chat{
		ID:           newChatID(),
		Type:         kind,
		Participants: []models.User{s.currentUser, counterpart},
		Messages:     []models.Message{},
	}

	s.chats = append([]models.Chat{newChat}, s.chats...)
	s.sortLocked()
	s.selectedChatID = newChat.ID
	s.persistLocked()
}

// SendMessage appends a message from the current user to the target
// chat (phase 1 of a send). The return value reports whether an AI
// turn is now outstanding; the caller dispatches ResolveAITurn for it
// without awaiting. Empty payloads are rejected at the UI boundary,
// not here.
func (s *Store) SendMessage(chatID, text, imagePath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findLocked(chatID)
	if chat == nil {
		return false
	}

	msg := models.Message{
		ID:        newMessageID(),
		ChatID:    chatID,
		SenderID:  s.currentUser.ID,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		Type:      models.MessageText,
	}
	if imagePath != "" {
		msg.Type = models.MessageImage
		msg.ImageURL = imagePath
	}

	chat.Messages = append(chat.Messages, msg)
	chat.LastMessage = &msg
	isAI := chat.Type == models.ChatTypeAI
	if isAI {
		chat.IsTyping = true
	}

	s.sortLocked()
	s.persistLocked()

	return isAI && imagePath == ""
}

// ResolveAITurn performs phase 2 of an AI send: one gateway round trip
// followed by the reply mutation. It is dispatched, never awaited, and
// tolerates the chat disappearing while the request is in flight.
//
// When the reply cannot be attributed to an AI participant the chat is
// left with IsTyping set. That mirrors the long-standing behavior of
// the response-processing path; see DESIGN.md before changing it.
func (s *Store) ResolveAITurn(ctx context.Context, chatID, prompt string) {
	reply := s.gateway.Respond(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findLocked(chatID)
	if chat == nil {
		s.logger.Warnw("chat removed before AI reply arrived", "chat_id", chatID)
		return
	}

	var aiParticipant *models.User
	for i := range chat.Participants {
		if chat.Participants[i].ID == s.aiUser.ID {
			aiParticipant = &chat.Participants[i]
			break
		}
	}
	if aiParticipant == nil {
		s.logger.Errorw("AI participant missing from chat, dropping reply", "chat_id", chatID)
		return
	}

	msg := models.Message{
		ID:        newMessageID(),
		ChatID:    chatID,
		SenderID:  aiParticipant.ID,
		Text:      reply,
		Timestamp: time.Now().UnixMilli(),
		Type:      models.MessageText,
	}

	chat.Messages = append(chat.Messages, msg)
	chat.LastMessage = &msg
	chat.IsTyping = false

	s.sortLocked()
	s.persistLocked()
}

// SetSearchTerm updates the term used to derive the visible chats.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

func (s *Store) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

// VisibleChats returns the collection with the current search term
// applied. The result is a render snapshot copied under the lock, so
// readers never observe a dispatched AI turn mutating the collection.
func (s *Store) VisibleChats() []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterChats(s.snapshotLocked(), s.currentUser.ID, s.searchTerm)
}

// SelectedChat returns the selected chat as seen through the current
// filter, matching how the rendering layer resolves it.
func (s *Store) SelectedChat() (models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedChatID == "" {
		return models.Chat{}, false
	}
	for _, chat := range FilterChats(s.chats, s.currentUser.ID, s.searchTerm) {
		if chat.ID == s.selectedChatID {
			return chat, true
		}
	}
	return models.Chat{}, false
}

// ClearSelection drops the selected chat id (navigating back to the
// chat list).
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedChatID = ""
}

// Chats returns a snapshot of the unfiltered collection.
func (s *Store) Chats() []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the collection so the backing array never
// escapes the mutex. Message slices and participant values are shared
// with the copies, but messages are immutable after creation and
// participants only change under the same lock.
func (s *Store) snapshotLocked() []models.Chat {
	out := make([]models.Chat, len(s.chats))
	copy(out, s.chats)
	return out
}

func (s *Store) CurrentUser() models.User { return s.currentUser }

func (s *Store) AIUser() models.User { return s.aiUser }

func (s *Store) findLocked(chatID string) *models.Chat {
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			return &s.chats[i]
		}
	}
	return nil
}

// sortLocked orders chats by descending last-message timestamp. Chats
// with no messages use a 0 fallback and therefore sort last, even when
// freshly created.
func (s *Store) sortLocked() {
	sort.SliceStable(s.chats, func(i, j int) bool {
		return s.chats[i].LastTimestamp() > s.chats[j].LastTimestamp()
	})
}

// persistLocked rewrites the whole collection after a mutation.
// Persistence failures are diagnostic only; the in-memory state stays
// authoritative for the session.
func (s *Store) persistLocked() {
	if err := s.adapter.Save(s.chats); err != nil {
		s.logger.Errorw("failed to persist chats", "error", err)
	}
}

func newChatID() string { return "chat-" + uuid.NewString() }

func newMessageID() string { return "msg-" + uuid.NewString() }
