// Package storage persists the chat collection as a single JSON blob
// in the key-value store.
package storage

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/kvstore"
	"github.com/telechat/telechat/internal/models"
)

// ChatsKey is the fixed key holding the serialized chat collection.
const ChatsKey = "nf-my-social-network-chats"

type Adapter struct {
	kv     *kvstore.Store
	logger *zap.SugaredLogger
}

func NewAdapter(kv *kvstore.Store, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{kv: kv, logger: logger}
}

// Load reads the stored chat collection. A missing blob yields
// (nil, nil). A blob that fails to parse or fails shape validation is
// removed and (nil, nil) is returned; corrupt data is discarded, not
// repaired.
func (a *Adapter) Load() ([]models.Chat, error) {
	data, ok, err := a.kv.Get(ChatsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var chats []models.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		a.logger.Warnw("discarding unparseable chat blob", "error", err)
		return nil, a.kv.Delete(ChatsKey)
	}

	if err := validate(chats); err != nil {
		a.logger.Warnw("discarding malformed chat blob", "error", err)
		return nil, a.kv.Delete(ChatsKey)
	}

	return chats, nil
}

// Save overwrites the stored blob with the given collection. An empty
// collection removes the key instead.
func (a *Adapter) Save(chats []models.Chat) error {
	if len(chats) == 0 {
		return a.kv.Delete(ChatsKey)
	}

	data, err := json.Marshal(chats)
	if err != nil {
		return err
	}
	return a.kv.Set(ChatsKey, data)
}

// validate checks the deserialized collection against the expected
// shape. Any mismatch is treated the same as a parse failure.
func validate(chats []models.Chat) error {
	for _, chat := range chats {
		if chat.ID == "" {
			return errInvalidShape("chat with empty id")
		}
		if chat.Type != models.ChatTypeUser && chat.Type != models.ChatTypeAI {
			return errInvalidShape("chat " + chat.ID + " has unknown type " + string(chat.Type))
		}
		if len(chat.Participants) != 2 {
			return errInvalidShape("chat " + chat.ID + " does not have exactly two participants")
		}
		for _, p := range chat.Participants {
			if p.ID == "" {
				return errInvalidShape("chat " + chat.ID + " has a participant with empty id")
			}
		}
	}
	return nil
}

type errInvalidShape string

func (e errInvalidShape) Error() string { return "invalid chat blob: " + string(e) }
