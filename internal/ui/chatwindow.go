package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/telechat/telechat/internal/models"
	"github.com/telechat/telechat/internal/store"
)

// aiRepliedMsg signals that an outstanding AI turn has resolved and
// the store holds the reply (or was left as-is on a dropped turn).
type aiRepliedMsg struct {
	chatID string
}

type ChatWindowModel struct {
	store        *store.Store
	chatID       string
	viewport     viewport.Model
	textarea     textarea.Model
	attachInput  textinput.Model
	attaching    bool
	spinner      spinner.Model
	windowWidth  int
	windowHeight int
}

func NewChatWindowModel(st *store.Store, chatID string) ChatWindowModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	vp := viewport.New(80, 20)

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 1000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	ai := textinput.New()
	ai.Placeholder = "Path to image file..."
	ai.CharLimit = 200

	m := ChatWindowModel{
		store:        st,
		chatID:       chatID,
		viewport:     vp,
		textarea:     ta,
		attachInput:  ai,
		spinner:      s,
		windowWidth:  80,
		windowHeight: 30,
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m
}

func (m ChatWindowModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink)
}

func (m ChatWindowModel) currentChat() (models.Chat, bool) {
	chat, ok := m.store.SelectedChat()
	if ok && chat.ID == m.chatID {
		return chat, true
	}
	return models.Chat{}, false
}

func (m ChatWindowModel) resolveAICmd(text string) tea.Cmd {
	chatID := m.chatID
	st := m.store
	return func() tea.Msg {
		st.ResolveAITurn(context.Background(), chatID, text)
		return aiRepliedMsg{chatID: chatID}
	}
}

func (m ChatWindowModel) backToList() (tea.Model, tea.Cmd) {
	m.store.ClearSelection()
	m.store.SetSearchTerm("")
	listModel := NewChatListModel(m.store)
	if m.windowWidth > 0 {
		updated, cmd := listModel.Update(tea.WindowSizeMsg{Width: m.windowWidth, Height: m.windowHeight})
		listModel = updated.(ChatListModel)
		return listModel, tea.Batch(listModel.Init(), cmd)
	}
	return listModel, listModel.Init()
}

func (m ChatWindowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height

		headerHeight := 4
		composerHeight := 6
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - headerHeight - composerHeight
		m.textarea.SetWidth(msg.Width - 4)

		m.refreshViewport()
		return m, nil

	case aiRepliedMsg:
		if msg.chatID == m.chatID {
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		if chat, ok := m.currentChat(); ok && chat.IsTyping {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "esc" {
			if m.attaching {
				m.attaching = false
				m.attachInput.Reset()
				m.attachInput.Blur()
				m.textarea.Focus()
				return m, textarea.Blink
			}
			return m.backToList()
		}

		chat, ok := m.currentChat()
		if !ok {
			return m, nil
		}

		if m.attaching {
			switch msg.String() {
			case "enter":
				m.attaching = false
				m.attachInput.Blur()
				m.textarea.Focus()
				return m, textarea.Blink
			default:
				var cmd tea.Cmd
				m.attachInput, cmd = m.attachInput.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "ctrl+p":
			m.attaching = true
			m.textarea.Blur()
			m.attachInput.Focus()
			return m, textinput.Blink

		case "ctrl+s":
			// The composer is the empty-payload boundary: the store is
			// never invoked without text or an attachment, and never
			// while an AI turn is outstanding.
			if chat.IsTyping {
				return m, nil
			}
			text := strings.TrimSpace(m.textarea.Value())
			imagePath := strings.TrimSpace(m.attachInput.Value())
			if text == "" && imagePath == "" {
				return m, nil
			}

			aiPending := m.store.SendMessage(m.chatID, text, imagePath)
			m.textarea.Reset()
			m.attachInput.Reset()
			m.refreshViewport()
			m.viewport.GotoBottom()

			if aiPending {
				return m, tea.Batch(m.spinner.Tick, m.resolveAICmd(text))
			}
			return m, nil

		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *ChatWindowModel) refreshViewport() {
	chat, ok := m.currentChat()
	if !ok || len(chat.Messages) == 0 {
		m.viewport.SetContent("")
		return
	}

	wrapWidth := m.viewport.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	currentUserID := m.store.CurrentUser().ID
	counterpart := chat.Counterpart(currentUserID)

	var content strings.Builder
	for i, message := range chat.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		timestamp := time.UnixMilli(message.Timestamp).Format("3:04 PM")

		if message.SenderID == currentUserID {
			header := messageHeaderStyle.Render(fmt.Sprintf("%s • %s", m.store.CurrentUser().Name, timestamp))
			content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(header) + "\n")

			if message.Text != "" {
				wrapped := wordwrap.String(message.Text, wrapWidth-10)
				styled := messageFromMeStyle.Render(wrapped)
				content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(styled) + "\n")
			}

			if message.Type == models.MessageImage && message.ImageURL != "" {
				attachment := messageHeaderStyle.Render(fmt.Sprintf("📎 [Image: %s]", message.ImageURL))
				content.WriteString(lipgloss.NewStyle().Align(lipgloss.Right).Width(wrapWidth).Render(attachment) + "\n")
			}
		} else {
			sender := "Unknown"
			if counterpart != nil && message.SenderID == counterpart.ID {
				sender = counterpart.Name
			}
			header := messageHeaderStyle.Render(fmt.Sprintf("%s • %s", sender, timestamp))
			content.WriteString(header + "\n")

			if message.Text != "" {
				wrapped := wordwrap.String(message.Text, wrapWidth-10)
				content.WriteString(messageFromOtherStyle.Render(wrapped) + "\n")
			}

			if message.Type == models.MessageImage && message.ImageURL != "" {
				content.WriteString(messageHeaderStyle.Render(fmt.Sprintf("📎 [Image: %s]", message.ImageURL)) + "\n")
			}
		}
	}

	m.viewport.SetContent(content.String())
}

func (m ChatWindowModel) View() string {
	chat, ok := m.currentChat()
	if !ok {
		s := titleStyle.Render("Chat") + "\n\n"
		s += normalStyle.Render("  Chat not available.") + "\n\n"
		s += helpStyle.Render("esc: back")
		return s
	}

	counterpart := chat.Counterpart(m.store.CurrentUser().ID)
	if counterpart == nil {
		s := titleStyle.Render("Chat") + "\n\n"
		s += errorStyle.Render("Failed to load chat: no counterpart found") + "\n\n"
		s += helpStyle.Render("esc: back")
		return s
	}

	s := titleStyle.Render(fmt.Sprintf("💬 %s", counterpart.Name)) + "\n\n"

	if len(chat.Messages) == 0 {
		s += normalStyle.Render("  No messages in this chat.") + "\n"
	} else {
		s += m.viewport.View() + "\n"
	}

	if chat.IsTyping {
		s += fmt.Sprintf("\n  %s %s is typing...\n", m.spinner.View(), counterpart.Name)
	}

	if m.attaching {
		s += "\n" + inputStyle.Render("Attach image: ") + m.attachInput.View() + "\n"
		s += helpStyle.Render("enter: confirm • esc: cancel")
		return s
	}

	s += "\n" + m.textarea.View() + "\n"
	if chat.IsTyping {
		s += helpStyle.Render("waiting for AI reply... • esc: back")
	} else {
		s += helpStyle.Render("ctrl+s: send • ctrl+p: attach image • esc: back • ctrl+c: quit")
	}
	return s
}
