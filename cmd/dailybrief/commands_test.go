package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupKeepsInitialiseCause(t *testing.T) {
	for _, key := range []string{"DAILYBRIEF_CONFIG", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "GEMINI_API_KEY", "AI_PROVIDER", "ARTIFACT_DIR"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	path := filepath.Join(dir, "config.yaml")
	body := "pipeline:\n  artifactDir: " + filepath.Join(blocker, "artifacts") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })

	_, _, err := setup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialise: artifact store")

	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr), "cause survives wrapping")
}
