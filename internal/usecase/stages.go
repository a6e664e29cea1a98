package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/config"
	"DailyBrief/internal/delivery"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/insight"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/report"
	"DailyBrief/internal/sentiment"
)

var (
	// ErrTooFewArticles fails collect-news below the configured minimum.
	ErrTooFewArticles = errors.New("too few articles collected")
	// ErrNoItems fails analyze when every collector came back empty.
	ErrNoItems = errors.New("no collected items")
	// ErrNoReport fails deliver when analyze never wrote a report.
	ErrNoReport = errors.New("no report")
	// ErrStaleReport fails deliver when the stored report is from another day.
	ErrStaleReport = errors.New("stale report")
)

// StageDeps wires all driven adapters into the stages.
type StageDeps struct {
	Config    config.Config
	Store     ports.ArtifactStore
	News      ports.ArticleSource
	Posts     ports.PostSource
	Quotes    ports.QuoteSource
	Sentiment *sentiment.Engine
	Insight   *insight.Engine
	Deliverer *delivery.Deliverer
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Stages implements the five pipeline stages over the artifact store.
type Stages struct {
	cfg       config.Config
	store     ports.ArtifactStore
	news      ports.ArticleSource
	posts     ports.PostSource
	quotes    ports.QuoteSource
	sentiment *sentiment.Engine
	insight   *insight.Engine
	deliverer *delivery.Deliverer
	clock     func() time.Time
	logger    *slog.Logger
}

// NewStages constructs the stage set.
func NewStages(deps StageDeps) *Stages {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	engine := deps.Sentiment
	if engine == nil {
		engine = sentiment.NewEngine(nil, deps.Logger)
	}
	return &Stages{
		cfg:       deps.Config,
		store:     deps.Store,
		news:      deps.News,
		posts:     deps.Posts,
		quotes:    deps.Quotes,
		sentiment: engine,
		insight:   deps.Insight,
		deliverer: deps.Deliverer,
		clock:     clock,
		logger:    deps.Logger,
	}
}

// All returns the stages in pipeline order.
func (s *Stages) All() []ports.Stage {
	return []ports.Stage{
		stage{domain.StageCollectNews, s.CollectNews},
		stage{domain.StageCollectSocial, s.CollectSocial},
		stage{domain.StageCollectMarket, s.CollectMarket},
		stage{domain.StageAnalyze, s.Analyze},
		stage{domain.StageDeliver, s.Deliver},
	}
}

type stage struct {
	name string
	run  func(ctx context.Context) error
}

func (s stage) Name() string                  { return s.name }
func (s stage) Run(ctx context.Context) error { return s.run(ctx) }

// CollectNews always writes the article list; it succeeds only when enough
// articles were found.
func (s *Stages) CollectNews(ctx context.Context) error {
	if err := s.clear(ctx, domain.ArtifactArticles); err != nil {
		return err
	}
	articles := []domain.Article{}
	var fetchErr error
	if s.news != nil {
		fetched, err := s.news.FetchDaily(ctx, s.now())
		if err != nil {
			fetchErr = err
			s.warn(ctx, "news collection failed", "error", err)
		}
		if fetched != nil {
			articles = fetched
		}
	}

	if err := s.store.Write(ctx, domain.ArtifactArticles, articles); err != nil {
		return errors.Wrap(err, "write articles")
	}
	s.info(ctx, "news collected", "articles", len(articles))

	if required := s.cfg.Collectors.News.MinArticles; len(articles) < required {
		err := errors.Wrapf(ErrTooFewArticles, "%d collected, %d required", len(articles), required)
		if fetchErr != nil {
			err = errors.CombineErrors(err, fetchErr)
		}
		return err
	}
	return nil
}

// CollectSocial writes whatever posts were found, an empty list included.
func (s *Stages) CollectSocial(ctx context.Context) error {
	if err := s.clear(ctx, domain.ArtifactPosts); err != nil {
		return err
	}
	posts := []domain.SocialPost{}
	if s.posts != nil {
		fetched, err := s.posts.FetchPosts(ctx)
		if err != nil {
			s.warn(ctx, "social collection failed", "error", err)
		}
		if fetched != nil {
			posts = fetched
		}
	}

	if err := s.store.Write(ctx, domain.ArtifactPosts, posts); err != nil {
		return errors.Wrap(err, "write posts")
	}
	s.info(ctx, "social posts collected", "posts", len(posts))
	return nil
}

// CollectMarket writes the quote, or a placeholder carrying the failure.
func (s *Stages) CollectMarket(ctx context.Context) error {
	if err := s.clear(ctx, domain.ArtifactMarket); err != nil {
		return err
	}
	symbol := s.cfg.Subject.Symbol

	var (
		snapshot domain.MarketSnapshot
		fetchErr error
	)
	if s.quotes == nil {
		fetchErr = errors.New("no quote source configured")
	} else {
		snapshot, fetchErr = s.quotes.Snapshot(ctx, symbol)
	}
	if fetchErr != nil {
		snapshot = domain.PlaceholderSnapshot(symbol, s.now(), fetchErr)
	}

	if err := s.store.Write(ctx, domain.ArtifactMarket, snapshot); err != nil {
		return errors.CombineErrors(errors.Wrap(err, "write market snapshot"), fetchErr)
	}
	if fetchErr != nil {
		return errors.Wrapf(fetchErr, "quote %s", symbol)
	}
	s.info(ctx, "market data collected", "symbol", symbol, "price", snapshot.CurrentPrice, "trend", snapshot.Trend)
	return nil
}

// Analyze turns the collected artifacts into the sentiment summary and the
// daily report. A report is written even when nothing was collected; any
// report from an earlier run is dropped first.
func (s *Stages) Analyze(ctx context.Context) error {
	if err := s.clear(ctx, domain.ArtifactSentiment, domain.ArtifactReport); err != nil {
		return err
	}
	logger := loggerFrom(ctx, s.logger)
	articles := loadOrEmpty[[]domain.Article](ctx, s.store, domain.ArtifactArticles, logger)
	posts := loadOrEmpty[[]domain.SocialPost](ctx, s.store, domain.ArtifactPosts, logger)
	market := loadOrEmpty[domain.MarketSnapshot](ctx, s.store, domain.ArtifactMarket, logger)

	lexicon := s.sentiment.Analyze(articles, posts)
	if err := s.store.Write(ctx, domain.ArtifactSentiment, lexicon); err != nil {
		return errors.Wrap(err, "write sentiment")
	}

	in := report.Input{
		Subject:  s.cfg.Subject.Name,
		Symbol:   s.cfg.Subject.Symbol,
		Now:      s.now(),
		Market:   market,
		Articles: articles,
		Posts:    posts,
		Lexicon:  lexicon,
	}
	if s.cfg.Analysis.UseAI {
		engine := s.insight
		if engine == nil {
			engine = insight.NewEngine(nil, s.cfg.Subject.Name, logger)
		}
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Analysis.CallTimeout())
		outcome := engine.Summarize(callCtx, articles, posts, market)
		cancel()
		in.Analysis = &outcome.Result
		in.Source = outcome.Source
	}

	daily := report.Assemble(in)
	if err := s.store.Write(ctx, domain.ArtifactReport, daily); err != nil {
		return errors.Wrap(err, "write report")
	}
	s.info(ctx, "report assembled",
		"articles", daily.Counts.Articles,
		"posts", daily.Counts.Posts,
		"sentiment", daily.Analysis.OverallSentiment,
		"source", daily.Source.Mode,
	)

	if len(articles) == 0 && len(posts) == 0 {
		return ErrNoItems
	}
	return nil
}

// Deliver renders the stored report and sends it to the configured chat. Only
// a report dated today is sent.
func (s *Stages) Deliver(ctx context.Context) error {
	if err := s.cfg.ValidateTelegram(); err != nil {
		return err
	}
	if s.deliverer == nil {
		return errors.New("no deliverer configured")
	}

	var daily domain.Report
	if err := s.store.Read(ctx, domain.ArtifactReport, &daily); err != nil {
		if errors.Is(err, ports.ErrArtifactNotFound) {
			return ErrNoReport
		}
		return errors.Wrap(err, "read report")
	}
	if daily.IsZero() {
		return ErrNoReport
	}
	if today := s.now().Format(domain.DateLayout); daily.Date != today {
		return errors.Wrapf(ErrStaleReport, "report dated %s, today is %s", daily.Date, today)
	}

	text := delivery.Render(daily)
	if err := s.deliverer.Deliver(ctx, text, s.cfg.Notifications.Telegram.ChatID); err != nil {
		return errors.Wrap(err, "deliver report")
	}
	s.info(ctx, "report delivered", "date", daily.Date)
	return nil
}

// loadOrEmpty is the single place where an absent or unreadable artifact turns
// into the empty value of its type.
func loadOrEmpty[T any](ctx context.Context, store ports.ArtifactStore, key string, logger *slog.Logger) T {
	var v T
	err := store.Read(ctx, key, &v)
	if err == nil {
		return v
	}

	var empty T
	if logger != nil {
		if errors.Is(err, ports.ErrArtifactNotFound) {
			logger.Debug("artifact missing, using empty value", "key", key)
		} else {
			logger.Warn("artifact unreadable, using empty value", "key", key, "error", err)
		}
	}
	return empty
}

// clear drops the artifacts a stage owns so a failed run never leaves the
// previous run's output behind.
func (s *Stages) clear(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return errors.Wrapf(err, "clear %s", key)
		}
	}
	return nil
}

func (s *Stages) now() time.Time {
	return s.clock().In(s.cfg.Scheduler.Location())
}

func (s *Stages) info(ctx context.Context, msg string, args ...any) {
	if logger := loggerFrom(ctx, s.logger); logger != nil {
		logger.Info(msg, args...)
	}
}

func (s *Stages) warn(ctx context.Context, msg string, args ...any) {
	if logger := loggerFrom(ctx, s.logger); logger != nil {
		logger.Warn(msg, args...)
	}
}
