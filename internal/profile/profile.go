// Package profile holds the identities of the two fixed parties: the
// local user (persisted as a YAML file so the display name survives
// restarts) and the synthetic AI assistant.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/telechat/telechat/internal/models"
)

const (
	// CurrentUserID is the stable identity of the local user.
	CurrentUserID = "user-curr"

	// AIUserID is the stable identity of the AI assistant.
	AIUserID = "ai-bot-asst"
)

// AIUser is the fixed synthetic identity of the assistant.
func AIUser() models.User {
	return models.User{
		ID:   AIUserID,
		Name: "AI Assistant",
	}
}

type Profile struct {
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar,omitempty"`
}

func profilePath(dir string) string {
	return filepath.Join(dir, "profile.yml")
}

// Load reads the user profile from <dir>/profile.yml, falling back to
// defaults when the file is absent or unreadable.
func Load(dir string) models.User {
	user := models.User{ID: CurrentUserID, Name: "You"}

	data, err := os.ReadFile(profilePath(dir))
	if err != nil {
		return user
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return user
	}

	if p.Name != "" {
		user.Name = p.Name
	}
	user.Avatar = p.Avatar
	return user
}

// Save writes the user profile to <dir>/profile.yml.
func Save(dir string, p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := yaml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(profilePath(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	return nil
}
