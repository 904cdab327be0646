package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telechat/telechat/internal/profile"
)

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	user := profile.Load(t.TempDir())
	require.Equal(t, profile.CurrentUserID, user.ID)
	require.Equal(t, "You", user.Name)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, profile.Save(dir, profile.Profile{Name: "Nadia", Avatar: "nadia.png"}))

	user := profile.Load(dir)
	require.Equal(t, profile.CurrentUserID, user.ID)
	require.Equal(t, "Nadia", user.Name)
	require.Equal(t, "nadia.png", user.Avatar)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	require.Error(t, profile.Save(t.TempDir(), profile.Profile{}))
}

func TestLoadUnparseableFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.yml"), []byte("{not yaml: ["), 0644))

	user := profile.Load(dir)
	require.Equal(t, "You", user.Name)
}

func TestAIUserIdentity(t *testing.T) {
	ai := profile.AIUser()
	require.Equal(t, profile.AIUserID, ai.ID)
	require.NotEmpty(t, ai.Name)
}
