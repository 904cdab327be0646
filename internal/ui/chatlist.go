package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telechat/telechat/internal/models"
	"github.com/telechat/telechat/internal/store"
)

type chatItem struct {
	chat          models.Chat
	currentUserID string
}

func (i chatItem) Title() string {
	name := "Unknown"
	if counterpart := i.chat.Counterpart(i.currentUserID); counterpart != nil {
		name = counterpart.Name
	}
	if i.chat.Type == models.ChatTypeAI {
		name = "🤖 " + name
	}
	if i.chat.UnreadCount > 0 {
		name += " " + unreadBadgeStyle.Render(fmt.Sprintf(" %d ", i.chat.UnreadCount))
	}
	return name
}

func (i chatItem) Description() string {
	if i.chat.IsTyping {
		return typingStyle.Render("typing...")
	}
	if i.chat.LastMessage == nil {
		return "No messages yet"
	}
	return fmt.Sprintf("%s • %s", formatTimeAgo(i.chat.LastMessage.Timestamp), i.chat.Preview())
}

func (i chatItem) FilterValue() string {
	if counterpart := i.chat.Counterpart(i.currentUserID); counterpart != nil {
		return counterpart.Name
	}
	return i.chat.ID
}

func formatTimeAgo(millis int64) string {
	if millis == 0 {
		return "unknown"
	}

	t := time.UnixMilli(millis)
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	}
	if duration < 2*time.Minute {
		return "1 min ago"
	}
	if duration < time.Hour {
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	}
	if duration < 2*time.Hour {
		return "1h ago"
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	}
	if duration < 48*time.Hour {
		return "yesterday"
	}
	if duration < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	}
	return t.Format("Jan 2")
}

type ChatListModel struct {
	store        *store.Store
	list         list.Model
	searchInput  textinput.Model
	searching    bool
	windowWidth  int
	windowHeight int
}

func NewChatListModel(st *store.Store) ChatListModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("5")).
		Bold(true)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("8"))

	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Chats"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search chats and messages..."
	si.CharLimit = 100

	m := ChatListModel{
		store:        st,
		list:         l,
		searchInput:  si,
		windowWidth:  80,
		windowHeight: 30,
	}
	m.reloadChats()
	return m
}

func (m *ChatListModel) reloadChats() {
	chats := m.store.VisibleChats()
	items := make([]list.Item, len(chats))
	for i, chat := range chats {
		items[i] = chatItem{chat: chat, currentUserID: m.store.CurrentUser().ID}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Chats - %d", len(chats))
}

func (m ChatListModel) Init() tea.Cmd {
	return nil
}

func (m ChatListModel) openChat(chatID string) (tea.Model, tea.Cmd) {
	m.store.SelectChat(chatID)
	window := NewChatWindowModel(m.store, chatID)
	if m.windowWidth > 0 {
		updated, cmd := window.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		window = updated.(ChatWindowModel)
		return window, tea.Batch(window.Init(), cmd)
	}
	return window, window.Init()
}

func (m ChatListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case aiRepliedMsg:
		// A turn dispatched from the chat window can resolve after the
		// user has navigated back here; refresh so the typing marker
		// and preview reflect the reply.
		m.reloadChats()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.searching {
			switch msg.String() {
			case "esc":
				m.searching = false
				m.searchInput.Reset()
				m.searchInput.Blur()
				m.store.SetSearchTerm("")
				m.reloadChats()
				return m, nil
			case "enter":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.searchInput, cmd = m.searchInput.Update(msg)
				m.store.SetSearchTerm(m.searchInput.Value())
				m.reloadChats()
				return m, cmd
			}
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "/":
			m.searching = true
			m.searchInput.Focus()
			return m, textinput.Blink

		case "n":
			m.store.CreateChat(models.ChatTypeUser)
			// SelectedChat resolves through the active search filter,
			// which drops a brand-new empty chat; in that case we stay
			// on the list instead of opening a chat it doesn't show.
			if chat, ok := m.store.SelectedChat(); ok {
				return m.openChat(chat.ID)
			}
			m.reloadChats()
			return m, nil

		case "a":
			m.store.CreateChat(models.ChatTypeAI)
			if chat, ok := m.store.SelectedChat(); ok {
				return m.openChat(chat.ID)
			}
			m.reloadChats()
			return m, nil

		case "enter":
			if item, ok := m.list.SelectedItem().(chatItem); ok {
				return m.openChat(item.chat.ID)
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ChatListModel) View() string {
	s := ""
	if m.searching || m.store.SearchTerm() != "" {
		s += inputStyle.Render("Search: ") + m.searchInput.View() + "\n"
	}

	if len(m.list.Items()) == 0 {
		s += titleStyle.Render("Chats") + "\n\n"
		if m.store.SearchTerm() != "" {
			s += normalStyle.Render("  No chats match your search.") + "\n"
		} else {
			s += normalStyle.Render("  No chats yet.") + "\n"
		}
		s += "\n" + helpStyle.Render("n: new chat • a: AI assistant • /: search • q: quit")
		return s
	}

	s += m.list.View() + "\n"
	s += helpStyle.Render("↑↓/jk: navigate • enter: open • n: new chat • a: AI assistant • /: search • q: quit")
	return s
}
