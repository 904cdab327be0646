package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/ai"
	"github.com/telechat/telechat/internal/config"
	"github.com/telechat/telechat/internal/kvstore"
	"github.com/telechat/telechat/internal/profile"
	"github.com/telechat/telechat/internal/storage"
	"github.com/telechat/telechat/internal/store"
	"github.com/telechat/telechat/internal/ui"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Printf("Telechat v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.DataDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	kv, err := kvstore.Open(cfg.DataDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	currentUser := profile.Load(cfg.DataDir)
	adapter := storage.NewAdapter(kv, sugar)
	gateway := ai.NewGateway(cfg.AIEndpoint, cfg.AIModel, cfg.GeminiAPIKey, sugar)

	st := store.New(currentUser, adapter, gateway, sugar)
	if err := st.Initialize(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(ui.NewChatListModel(st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the operator diagnostic channel. The TUI owns
// stdout, so logs go to a file inside the data directory.
func newLogger(dataDir string) (*zap.Logger, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{filepath.Join(dataDir, "telechat.log")}
	logCfg.ErrorOutputPaths = logCfg.OutputPaths
	return logCfg.Build()
}

func printHelp() {
	help := `Telechat - Terminal Chat Client with AI Assistant

Usage:
  telechat           Start the chat client
  telechat version   Show version information
  telechat help      Show this help message

Navigation:
  ↑/↓ or j/k        Navigate the chat list
  Enter             Open the selected chat
  ESC               Go back
  q                 Quit from the chat list
  ctrl+c            Force quit

Chat list:
  n                 Start a new chat
  a                 Open the AI assistant chat
  /                 Search chats and messages

Chat window:
  ctrl+s            Send message
  ctrl+p            Attach an image by file path
  ↑/↓ or j/k        Scroll messages

Configuration (environment):
  GEMINI_API_KEY        API key for the AI assistant
  TELECHAT_MODEL        Generative model (default: gemini-2.0-flash)
  TELECHAT_AI_ENDPOINT  API base URL
  TELECHAT_DATA_DIR     Data directory (default: ~/.telechat)

Notes:
  - Chats are stored in a local database under the data directory
  - Your display name can be set in <data dir>/profile.yml
  - Diagnostics are written to <data dir>/telechat.log
`
	fmt.Print(help)
}
