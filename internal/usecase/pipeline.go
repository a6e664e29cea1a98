package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/logging"
	"DailyBrief/internal/ports"
)

// ErrUnknownStage is returned by RunStage for a name not in the pipeline.
var ErrUnknownStage = errors.New("unknown stage")

// DefaultStageTimeout bounds a stage when no timeout is configured.
const DefaultStageTimeout = 5 * time.Minute

// Pipeline runs the stages strictly in order. A failing stage never stops the
// stages after it; errors and panics are converted to a failed StageResult.
type Pipeline struct {
	stages  []ports.Stage
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(stages []ports.Stage, stageTimeout time.Duration, logger *slog.Logger) *Pipeline {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return &Pipeline{
		stages:  stages,
		timeout: stageTimeout,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// StageNames lists the stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, 0, len(p.stages))
	for _, stage := range p.stages {
		names = append(names, stage.Name())
	}
	return names
}

// Run executes every stage once and reports the per-stage outcomes.
func (p *Pipeline) Run(ctx context.Context) domain.RunResult {
	result := domain.RunResult{RunID: p.newID(), StartedAt: p.now()}
	logger := p.runLogger(result.RunID)
	logger.Info("pipeline started", "stages", len(p.stages))

	for _, stage := range p.stages {
		result.Stages = append(result.Stages, p.execute(ctx, stage, logger))
	}

	result.FinishedAt = p.now()
	p.logSummary(logger, result)
	return result
}

// RunStage executes a single stage as an isolated unit.
func (p *Pipeline) RunStage(ctx context.Context, name string) (domain.StageResult, error) {
	for _, stage := range p.stages {
		if stage.Name() != name {
			continue
		}
		logger := p.runLogger(p.newID())
		return p.execute(ctx, stage, logger), nil
	}
	return domain.StageResult{Stage: name}, errors.WithHintf(
		errors.Wrapf(ErrUnknownStage, "%q", name),
		"available stages: %v", p.StageNames(),
	)
}

func (p *Pipeline) execute(ctx context.Context, stage ports.Stage, logger *slog.Logger) domain.StageResult {
	name := stage.Name()
	logger = logger.With("stage", name)
	logger.Info("stage started")

	start := p.now()
	err := p.runGuarded(ctx, stage, logger)
	res := domain.StageResult{Stage: name, Success: err == nil, Duration: p.now().Sub(start)}

	if err != nil {
		res.Error = err.Error()
		logger.Warn("stage failed", "error", err, "duration", res.Duration)
		return res
	}
	logger.Info("stage completed", "duration", res.Duration)
	return res
}

func (p *Pipeline) runGuarded(ctx context.Context, stage ports.Stage, logger *slog.Logger) (err error) {
	stageCtx, cancel := context.WithTimeout(withLogger(ctx, logger), p.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("stage panic stack", "stack", string(debug.Stack()))
			err = errors.Newf("stage panicked: %v", r)
		}
	}()

	if err := stage.Run(stageCtx); err != nil {
		if errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
			return errors.Wrapf(err, "stage timed out after %s", p.timeout)
		}
		return err
	}
	return nil
}

func (p *Pipeline) logSummary(logger *slog.Logger, result domain.RunResult) {
	for _, stage := range result.Stages {
		status := "ok"
		if !stage.Success {
			status = "failed"
		}
		logger.Info(fmt.Sprintf("  %-15s %s", stage.Stage, status), "duration", stage.Duration.Round(time.Millisecond))
	}

	succeeded := len(result.Stages) - len(result.Failed())
	if result.Success() {
		logger.Info("pipeline finished", "success", true, "stages_ok", succeeded, "elapsed", result.FinishedAt.Sub(result.StartedAt))
		return
	}
	logger.Warn("pipeline finished with failures",
		"success", false,
		"stages_ok", succeeded,
		"failed", result.Failed(),
		"elapsed", result.FinishedAt.Sub(result.StartedAt),
	)
}

func (p *Pipeline) runLogger(runID string) *slog.Logger {
	logger := p.logger
	if logger == nil {
		logger = logging.Discard()
	}
	return logger.With("run_id", runID)
}

type loggerKey struct{}

// withLogger attaches the run-scoped logger so stage log lines carry the run
// id and stage name.
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
