package models

import "strings"

type ChatType string

const (
	ChatTypeUser ChatType = "user"
	ChatTypeAI   ChatType = "ai"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	IsOnline bool   `json:"isOnline,omitempty"`
}

type Message struct {
	ID               string      `json:"id"`
	ChatID           string      `json:"chatId"`
	SenderID         string      `json:"senderId"`
	Text             string      `json:"text"`
	Timestamp        int64       `json:"timestamp"`
	Status           string      `json:"status,omitempty"`
	Type             MessageType `json:"type,omitempty"`
	ImageURL         string      `json:"imageUrl,omitempty"`
	FileName         string      `json:"fileName,omitempty"`
	FileURL          string      `json:"fileUrl,omitempty"`
	ReplyToMessageID string      `json:"replyToMessageId,omitempty"`
}

type Chat struct {
	ID           string    `json:"id"`
	Type         ChatType  `json:"type"`
	Participants []User    `json:"participants"`
	Messages     []Message `json:"messages"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	UnreadCount  int       `json:"unreadCount,omitempty"`
	IsTyping     bool      `json:"isTyping,omitempty"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    int64     `json:"createdAt,omitempty"`
}

// Counterpart returns the non-current-user participant, or nil if the
// chat has no resolvable counterpart.
func (c *Chat) Counterpart(currentUserID string) *User {
	for i := range c.Participants {
		if c.Participants[i].ID != currentUserID {
			return &c.Participants[i]
		}
	}
	return nil
}

// HasParticipant reports whether a participant with the given id exists.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// LastTimestamp returns the timestamp of the last message, or 0 for a
// chat with no messages.
func (c *Chat) LastTimestamp() int64 {
	if c.LastMessage == nil {
		return 0
	}
	return c.LastMessage.Timestamp
}

// Preview returns a short single-line preview of the last message.
func (c *Chat) Preview() string {
	if c.LastMessage == nil {
		return "No messages yet"
	}
	text := c.LastMessage.Text
	if text == "" && c.LastMessage.Type == MessageImage {
		text = "📎 Image"
	}
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) > 50 {
		text = string(runes[:47]) + "..."
	}
	return text
}
