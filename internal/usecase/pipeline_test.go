package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/logging"
	"DailyBrief/internal/ports"
)

type scriptedStage struct {
	name  string
	err   error
	panic bool
	block bool
	calls *[]string
}

func (s scriptedStage) Name() string { return s.name }

func (s scriptedStage) Run(ctx context.Context) error {
	*s.calls = append(*s.calls, s.name)
	if s.panic {
		panic("boom")
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func scripted(calls *[]string, outcomes ...bool) []ports.Stage {
	names := []string{"collect-news", "collect-social", "collect-market", "analyze", "deliver"}
	stages := make([]ports.Stage, len(outcomes))
	for i, ok := range outcomes {
		st := scriptedStage{name: names[i], calls: calls}
		if !ok {
			st.err = errors.Newf("%s failed", names[i])
		}
		stages[i] = st
	}
	return stages
}

func TestRunExecutesEveryStageDespiteFailures(t *testing.T) {
	t.Parallel()

	var calls []string
	var logs bytes.Buffer
	p := NewPipeline(scripted(&calls, true, false, true, true, false), time.Second, logging.NewWithWriter(&logs, "info"))

	result := p.Run(context.Background())

	assert.Equal(t, []string{"collect-news", "collect-social", "collect-market", "analyze", "deliver"}, calls)
	require.Len(t, result.Stages, 5)
	assert.False(t, result.Success())
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, []string{"collect-social", "deliver"}, result.Failed())
	assert.Equal(t, "collect-social failed", result.Stages[1].Error)
	assert.NotEmpty(t, result.RunID)
	assert.Contains(t, logs.String(), "run_id="+result.RunID)
	assert.Contains(t, logs.String(), "pipeline finished with failures")
}

func TestRunAllSucceed(t *testing.T) {
	t.Parallel()

	var calls []string
	result := NewPipeline(scripted(&calls, true, true, true, true, true), 0, nil).Run(context.Background())

	assert.True(t, result.Success())
	assert.Equal(t, 0, result.ExitCode())
	assert.Empty(t, result.Failed())
}

func TestRunRecoversPanickingStage(t *testing.T) {
	t.Parallel()

	var calls []string
	stages := []ports.Stage{
		scriptedStage{name: "collect-news", panic: true, calls: &calls},
		scriptedStage{name: "analyze", calls: &calls},
	}

	result := NewPipeline(stages, time.Second, logging.Discard()).Run(context.Background())

	assert.Equal(t, []string{"collect-news", "analyze"}, calls)
	assert.False(t, result.Stages[0].Success)
	assert.Contains(t, result.Stages[0].Error, "panicked")
	assert.True(t, result.Stages[1].Success)
}

func TestRunAppliesStageTimeout(t *testing.T) {
	t.Parallel()

	var calls []string
	stages := []ports.Stage{
		scriptedStage{name: "collect-market", block: true, calls: &calls},
		scriptedStage{name: "analyze", calls: &calls},
	}

	result := NewPipeline(stages, 20*time.Millisecond, nil).Run(context.Background())

	assert.False(t, result.Stages[0].Success)
	assert.Contains(t, result.Stages[0].Error, "timed out")
	assert.True(t, result.Stages[1].Success)
}

func TestRunStage(t *testing.T) {
	t.Parallel()

	var calls []string
	p := NewPipeline(scripted(&calls, true, false, true), time.Second, nil)

	res, err := p.RunStage(context.Background(), "collect-social")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"collect-social"}, calls)

	_, err = p.RunStage(context.Background(), "publish")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStage))
	assert.Equal(t, []string{"collect-news", "collect-social", "collect-market"}, p.StageNames())
}
