package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/kvstore"
	"github.com/telechat/telechat/internal/models"
	"github.com/telechat/telechat/internal/profile"
	"github.com/telechat/telechat/internal/storage"
	"github.com/telechat/telechat/internal/store"
)

type fakeGateway struct {
	reply string
	calls int
}

func (g *fakeGateway) Respond(_ context.Context, _ string) string {
	g.calls++
	return g.reply
}

func newTestStore(t *testing.T, gw store.Responder) (*store.Store, *storage.Adapter) {
	t.Helper()

	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	logger := zap.NewNop().Sugar()
	adapter := storage.NewAdapter(kv, logger)
	currentUser := models.User{ID: profile.CurrentUserID, Name: "You"}

	st := store.New(currentUser, adapter, gw, logger)
	require.NoError(t, st.Initialize())
	return st, adapter
}

// checkLastMessage verifies the denormalized lastMessage cache against
// the message sequence for every chat.
func checkLastMessage(t *testing.T, st *store.Store) {
	t.Helper()
	for _, chat := range st.Chats() {
		if len(chat.Messages) == 0 {
			require.Nil(t, chat.LastMessage, "chat %s: lastMessage should be absent", chat.ID)
			continue
		}
		require.NotNil(t, chat.LastMessage, "chat %s: lastMessage missing", chat.ID)
		require.Equal(t, chat.Messages[len(chat.Messages)-1], *chat.LastMessage, "chat %s", chat.ID)
	}
}

func TestInitializeFreshStart(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	chats := st.Chats()
	require.Len(t, chats, 1)
	require.Equal(t, models.ChatTypeAI, chats[0].Type)
	require.Len(t, chats[0].Messages, 1)
	require.Equal(t, profile.AIUserID, chats[0].Messages[0].SenderID)
	require.Equal(t, store.Greeting, chats[0].Messages[0].Text)
	require.Equal(t, 1, chats[0].UnreadCount)
	checkLastMessage(t, st)
}

func TestInitializeAdoptsStoredCollection(t *testing.T) {
	st, adapter := newTestStore(t, &fakeGateway{})
	st.CreateChat(models.ChatTypeUser)
	stored := st.Chats()

	logger := zap.NewNop().Sugar()
	st2 := store.New(models.User{ID: profile.CurrentUserID, Name: "You"}, adapter, &fakeGateway{}, logger)
	require.NoError(t, st2.Initialize())
	require.Equal(t, stored, st2.Chats())
}

func TestCreateChatAISingleton(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	st.CreateChat(models.ChatTypeAI)
	st.CreateChat(models.ChatTypeAI)

	aiChats := 0
	for _, chat := range st.Chats() {
		if chat.Type == models.ChatTypeAI {
			aiChats++
		}
	}
	require.Equal(t, 1, aiChats)

	selected, ok := st.SelectedChat()
	require.True(t, ok)
	require.Equal(t, models.ChatTypeAI, selected.Type)
}

func TestCreateChatUser(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	st.CreateChat(models.ChatTypeUser)

	chats := st.Chats()
	require.Len(t, chats, 2)

	selected, ok := st.SelectedChat()
	require.True(t, ok)
	require.Equal(t, models.ChatTypeUser, selected.Type)
	require.Len(t, selected.Participants, 2)

	counterpart := selected.Counterpart(profile.CurrentUserID)
	require.NotNil(t, counterpart)
	require.Contains(t, counterpart.ID, "user-")
	require.Empty(t, selected.Messages)
	checkLastMessage(t, st)
}

func TestNewEmptyChatSortsLast(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	st.CreateChat(models.ChatTypeUser)

	// The greeting chat has a message; the new chat has none and uses
	// the 0 timestamp fallback, so it sorts after despite being newer.
	chats := st.Chats()
	require.Len(t, chats, 2)
	require.Equal(t, models.ChatTypeAI, chats[0].Type)
	require.Equal(t, models.ChatTypeUser, chats[1].Type)
}

func TestSelectChatClearsUnread(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	chatID := st.Chats()[0].ID
	require.Equal(t, 1, st.Chats()[0].UnreadCount)

	st.SelectChat(chatID)
	require.Equal(t, 0, st.Chats()[0].UnreadCount)

	selected, ok := st.SelectedChat()
	require.True(t, ok)
	require.Equal(t, chatID, selected.ID)
}

func TestSelectChatIdempotent(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	chatID := st.Chats()[0].ID
	st.SelectChat(chatID)
	before := st.Chats()

	st.SelectChat(chatID)
	require.Equal(t, before, st.Chats())
}

func TestSelectChatUnknownIDIsNoOp(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	before := st.Chats()
	st.SelectChat("chat-does-not-exist")
	require.Equal(t, before, st.Chats())

	_, ok := st.SelectedChat()
	require.False(t, ok)
}

func TestSendMessageUserChat(t *testing.T) {
	gw := &fakeGateway{reply: "should not be used"}
	st, _ := newTestStore(t, gw)

	st.CreateChat(models.ChatTypeUser)
	selected, _ := st.SelectedChat()

	aiPending := st.SendMessage(selected.ID, "hello", "")
	require.False(t, aiPending)
	require.Zero(t, gw.calls)

	chat := findChat(t, st, selected.ID)
	require.Len(t, chat.Messages, 1)
	require.False(t, chat.IsTyping)
	require.Equal(t, "hello", chat.Messages[0].Text)
	require.Equal(t, profile.CurrentUserID, chat.Messages[0].SenderID)
	checkLastMessage(t, st)
}

func TestSendMessageAIChatRoundTrip(t *testing.T) {
	gw := &fakeGateway{reply: "Hello back"}
	st, _ := newTestStore(t, gw)

	chatID := st.Chats()[0].ID
	st.SelectChat(chatID)

	aiPending := st.SendMessage(chatID, "hi", "")
	require.True(t, aiPending)
	require.True(t, findChat(t, st, chatID).IsTyping)

	st.ResolveAITurn(context.Background(), chatID, "hi")
	require.Equal(t, 1, gw.calls)

	chat := findChat(t, st, chatID)
	require.False(t, chat.IsTyping)
	// greeting + user message + AI reply
	require.Len(t, chat.Messages, 3)
	require.Equal(t, "Hello back", chat.LastMessage.Text)
	require.Equal(t, profile.AIUserID, chat.LastMessage.SenderID)
	checkLastMessage(t, st)
}

func TestAIChatAlternatesSenders(t *testing.T) {
	gw := &fakeGateway{reply: "reply"}
	st, _ := newTestStore(t, gw)

	chatID := st.Chats()[0].ID
	for i := 0; i < 3; i++ {
		st.SendMessage(chatID, "ping", "")
		st.ResolveAITurn(context.Background(), chatID, "ping")
	}

	chat := findChat(t, st, chatID)
	// greeting, then 3 user/AI pairs
	require.Len(t, chat.Messages, 7)
	for i := 1; i < len(chat.Messages); i++ {
		want := profile.CurrentUserID
		if i%2 == 0 {
			want = profile.AIUserID
		}
		require.Equal(t, want, chat.Messages[i].SenderID, "message %d", i)
	}
}

func TestSendImageToAIChatSkipsGateway(t *testing.T) {
	gw := &fakeGateway{reply: "unused"}
	st, _ := newTestStore(t, gw)

	chatID := st.Chats()[0].ID
	aiPending := st.SendMessage(chatID, "", "/tmp/cat.png")
	require.False(t, aiPending)
	require.Zero(t, gw.calls)

	chat := findChat(t, st, chatID)
	last := chat.Messages[len(chat.Messages)-1]
	require.Equal(t, models.MessageImage, last.Type)
	require.Equal(t, "/tmp/cat.png", last.ImageURL)
	// The pending flag is still raised for AI chats even though no
	// turn was dispatched; see the open questions in DESIGN.md.
	require.True(t, chat.IsTyping)
}

func TestResolveAITurnOnRemovedChat(t *testing.T) {
	gw := &fakeGateway{reply: "late reply"}
	st, _ := newTestStore(t, gw)

	before := st.Chats()
	st.ResolveAITurn(context.Background(), "chat-gone", "hi")
	require.Equal(t, 1, gw.calls)
	require.Equal(t, before, st.Chats())
}

func TestSendMessageMovesChatToTop(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	st.CreateChat(models.ChatTypeUser)
	userChat, _ := st.SelectedChat()

	st.SendMessage(userChat.ID, "newest", "")

	chats := st.Chats()
	require.Equal(t, userChat.ID, chats[0].ID)
	checkLastMessage(t, st)
}

func TestSendMessageUnknownChatIsNoOp(t *testing.T) {
	st, _ := newTestStore(t, &fakeGateway{})

	before := st.Chats()
	require.False(t, st.SendMessage("chat-gone", "hello", ""))
	require.Equal(t, before, st.Chats())
}

func TestConcurrentReadsDuringAIReplies(t *testing.T) {
	gw := &fakeGateway{reply: "reply"}
	st, _ := newTestStore(t, gw)
	chatID := st.Chats()[0].ID

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			st.SendMessage(chatID, "ping", "")
			st.ResolveAITurn(context.Background(), chatID, "ping")
		}
	}()

	// Render-style reads must see consistent snapshots while the
	// dispatched turns mutate and re-sort the collection.
	for i := 0; i < 200; i++ {
		for _, chat := range st.VisibleChats() {
			_ = chat.LastTimestamp()
			for _, msg := range chat.Messages {
				_ = msg.Text
			}
		}
		_, _ = st.SelectedChat()
	}

	wg.Wait()
	checkLastMessage(t, st)
	require.Len(t, findChat(t, st, chatID).Messages, 101)
}

func findChat(t *testing.T, st *store.Store, chatID string) models.Chat {
	t.Helper()
	for _, chat := range st.Chats() {
		if chat.ID == chatID {
			return chat
		}
	}
	t.Fatalf("chat %s not found", chatID)
	return models.Chat{}
}
