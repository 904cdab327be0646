package store

import (
	"strings"

	"github.com/telechat/telechat/internal/models"
)

// FilterChats derives the visible collection for a search term. It
// never mutates its input.
//
// An empty (or whitespace-only) term is the identity. Otherwise a chat
// is kept when any message text contains the term, any image message's
// reference contains the term, or the counterpart's display name
// contains the term — all case-insensitive substring matches. A chat
// kept through message matches is narrowed to just those messages; a
// chat kept through its name alone keeps its full message sequence.
func FilterChats(chats []models.Chat, currentUserID, term string) []models.Chat {
	if strings.TrimSpace(term) == "" {
		return chats
	}

	needle := strings.ToLower(term)
	var result []models.Chat

	for _, chat := range chats {
		var matching []models.Message
		for _, msg := range chat.Messages {
			if strings.Contains(strings.ToLower(msg.Text), needle) {
				matching = append(matching, msg)
				continue
			}
			if msg.Type == models.MessageImage && msg.ImageURL != "" &&
				strings.Contains(strings.ToLower(msg.ImageURL), needle) {
				matching = append(matching, msg)
			}
		}

		counterpart := chat.Counterpart(currentUserID)
		nameMatch := counterpart != nil && strings.Contains(strings.ToLower(counterpart.Name), needle)

		if len(matching) == 0 && !nameMatch {
			continue
		}

		kept := chat
		if len(matching) > 0 {
			kept.Messages = matching
		}
		result = append(result, kept)
	}

	return result
}
