package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	unsetenv(t, "FRONTEND_URL")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	req.NoError(err)
	req.Equal(3001, config.Port)
	req.Equal("*", config.FrontendURL)
	req.Equal(50, config.HistoryLimit)
	req.Equal(2*time.Second, config.StoreTimeout)
	req.False(config.LegacyBroadcastAll)
}

func TestLoadConfig_Dotenv_Does_Not_Override_Environment(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	req.NoError(os.WriteFile(file, []byte("BADGER_FILEPATH="+dir+"\nPORT=4000\nHISTORY_LIMIT=20\n"), 0o600))
	t.Setenv("PORT", "4100")
	t.Setenv("LEGACY_BROADCAST_ALL", "true")
	unsetenv(t, "BADGER_FILEPATH")
	unsetenv(t, "HISTORY_LIMIT")

	config, err := LoadConfig(file)

	req.NoError(err)
	req.Equal(4100, config.Port)
	req.Equal(20, config.HistoryLimit)
	req.Equal(dir, config.BadgerFilepath)
	req.True(config.LegacyBroadcastAll)
}

func TestLoadConfig_Rejects_Invalid_Values(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("HISTORY_LIMIT", "100")
	t.Setenv("HISTORY_MAX_LIMIT", "10")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	var validationErrors validator.ValidationErrors
	req.ErrorAs(err, &validationErrors)
}

// unsetenv removes a variable for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
