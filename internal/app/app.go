package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/config"
	"DailyBrief/internal/delivery"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/infrastructure/feeds"
	"DailyBrief/internal/infrastructure/llm"
	"DailyBrief/internal/infrastructure/market"
	"DailyBrief/internal/infrastructure/scheduler"
	"DailyBrief/internal/infrastructure/social"
	"DailyBrief/internal/infrastructure/storage"
	"DailyBrief/internal/infrastructure/telegram"
	"DailyBrief/internal/insight"
	"DailyBrief/internal/logging"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/retry"
	"DailyBrief/internal/scanner"
	"DailyBrief/internal/sentiment"
	"DailyBrief/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New builds the application: adapters, engines, stages and scheduler.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.NewFileStore(cfg.Pipeline.ArtifactDir)
	if err != nil {
		return nil, errors.Wrap(err, "artifact store")
	}

	reader := feeds.NewReader(nil)
	registry := scanner.NewRegistry(
		feeds.NewRSSScanner(reader),
		feeds.NewGoogleNewsScanner(reader),
	)
	news := feeds.NewStrategySource(registry, cfg.Sites, cfg.Collectors.News.MaxArticles, baseLogger.With("component", "source"))

	socialCfg := cfg.Collectors.Social
	hnOpts := []social.HackerNewsOption{social.WithLogger(baseLogger.With("component", "hackernews"))}
	if socialCfg.HackerNews.BaseURL != "" {
		hnOpts = append(hnOpts, social.WithBaseURL(socialCfg.HackerNews.BaseURL))
	}
	posts := social.NewCollector(socialCfg, reader, social.NewHackerNewsClient(hnOpts...), baseLogger.With("component", "social"))

	marketCfg := cfg.Collectors.Market
	quoteOpts := []market.ClientOption{market.WithLogger(baseLogger.With("component", "market"))}
	if marketCfg.BaseURL != "" {
		quoteOpts = append(quoteOpts, market.WithBaseURL(marketCfg.BaseURL))
	}
	if marketCfg.RateLimit > 0 {
		quoteOpts = append(quoteOpts, market.WithRateLimit(marketCfg.RateLimit))
	}
	quotes := market.NewYahooClient(quoteOpts...)

	var insightEngine *insight.Engine
	if cfg.Analysis.UseAI {
		insightEngine = insight.NewEngine(newCompleter(ctx, cfg, baseLogger), cfg.Subject.Name, baseLogger.With("component", "insight"))
	}

	tg := cfg.Notifications.Telegram
	deliverer := delivery.NewDeliverer(telegram.NewNotifier(tg.APIURL, tg.BotToken), delivery.Options{
		Policy: retry.Policy{
			MaxAttempts: tg.MaxRetries,
			BaseDelay:   tg.RetryBaseDelay(),
			MaxDelay:    30 * time.Second,
			Retryable:   retry.IsTransient,
			Sleep:       retry.Sleep,
		},
		Pause:  tg.PauseBetweenChunks(),
		Logger: baseLogger.With("component", "delivery"),
	})

	stages := usecase.NewStages(usecase.StageDeps{
		Config:    cfg,
		Store:     store,
		News:      news,
		Posts:     posts,
		Quotes:    quotes,
		Sentiment: sentiment.NewEngine(nil, baseLogger.With("component", "sentiment")),
		Insight:   insightEngine,
		Deliverer: deliverer,
		Logger:    baseLogger,
	})
	pipeline := usecase.NewPipeline(stages.All(), cfg.Pipeline.Timeout(), baseLogger.With("component", "pipeline"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(newDriver(cfg, baseLogger), pipeline, baseLogger.With("component", "scheduler")),
	}, nil
}

// newCompleter returns nil when the AI provider cannot be used; the insight
// engine then produces the fallback result.
func newCompleter(ctx context.Context, cfg config.Config, logger *slog.Logger) ports.Completer {
	if err := cfg.ValidateAI(); err != nil {
		logger.Warn("ai analysis disabled", "error", err, "hint", errors.FlattenHints(err))
		return nil
	}
	completer, err := llm.New(ctx, cfg.Analysis)
	if err != nil {
		logger.Warn("ai client unavailable", "provider", cfg.Analysis.Provider, "error", err)
		return nil
	}
	logger.Info("ai analysis enabled", "provider", cfg.Analysis.Provider, "model", completer.Model())
	return completer
}

func newDriver(cfg config.Config, logger *slog.Logger) ports.Scheduler {
	spec, err := cfg.Scheduler.CronExpression()
	if err != nil {
		return nil
	}
	return scheduler.NewCronScheduler(spec, cfg.Scheduler.Location(), logger.With("component", "cron"))
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) domain.RunResult {
	return a.pipeline.Run(ctx)
}

// RunStage executes one named stage.
func (a *Application) RunStage(ctx context.Context, name string) (domain.StageResult, error) {
	return a.pipeline.RunStage(ctx, name)
}

// StageNames lists the pipeline stages in order.
func (a *Application) StageNames() []string {
	return a.pipeline.StageNames()
}

// Schedule runs the pipeline daily until ctx is cancelled. With runNow (or
// scheduler.runOnStart) one run starts immediately.
func (a *Application) Schedule(ctx context.Context, runNow bool) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return errors.Wrap(err, "start scheduler")
	}
	a.logger.Info("scheduler started",
		"time", a.cfg.Scheduler.Time,
		"timezone", a.cfg.Scheduler.Location().String(),
	)

	if runNow || a.cfg.Scheduler.RunOnStart {
		go func() {
			result, err := a.scheduler.RunNow(ctx)
			if err != nil {
				a.logger.Warn("immediate run skipped", "reason", err)
				return
			}
			a.logger.Info("immediate run finished", "run_id", result.RunID, "success", result.Success())
		}()
	}

	<-ctx.Done()
	a.logger.Info("shutting down scheduler")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}
