package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/logging"
)

func offlineConfig(t *testing.T) config.Config {
	t.Helper()
	for _, key := range []string{"DAILYBRIEF_CONFIG", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "GEMINI_API_KEY", "AI_PROVIDER", "ARTIFACT_DIR"} {
		t.Setenv(key, "")
	}
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Pipeline.ArtifactDir = filepath.Join(t.TempDir(), "artifacts")
	return cfg
}

func TestNewWiresAllStages(t *testing.T) {
	cfg := offlineConfig(t)

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.StageCollectNews,
		domain.StageCollectSocial,
		domain.StageCollectMarket,
		domain.StageAnalyze,
		domain.StageDeliver,
	}, application.StageNames())

	_, err = os.Stat(cfg.Pipeline.ArtifactDir)
	assert.NoError(t, err, "artifact directory is created")
}

func TestRunStageOffline(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.Analysis.UseAI = false

	application, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	res, err := application.RunStage(context.Background(), domain.StageAnalyze)
	require.NoError(t, err)
	assert.False(t, res.Success, "no collected items")
	assert.FileExists(t, filepath.Join(cfg.Pipeline.ArtifactDir, domain.ArtifactReport+".json"))

	res, err = application.RunStage(context.Background(), domain.StageDeliver)
	require.NoError(t, err)
	assert.False(t, res.Success, "telegram is not configured")
	assert.Contains(t, res.Error, "telegram")

	_, err = application.RunStage(context.Background(), "publish")
	assert.Error(t, err)
}
