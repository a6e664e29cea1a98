package feeds

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/ports"
	"DailyBrief/internal/scanner"
)

// DefaultMaxArticles caps the collected list when config leaves it unset.
const DefaultMaxArticles = 50

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry    *scanner.Registry
	sites       []config.SiteConfig
	maxArticles int
	logger      *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, maxArticles int, log *slog.Logger) *StrategySource {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	return &StrategySource{
		registry:    reg,
		sites:       sites,
		maxArticles: maxArticles,
		logger:      log,
	}
}

// FetchDaily iterates over configured sites and executes their scanners. A
// site that fails is logged and skipped; the result is de-duplicated by URL
// and capped. An error is returned only when every site failed.
func (s *StrategySource) FetchDaily(ctx context.Context, day time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, errors.New("scanner registry is not configured")
	}

	s.debug("fetch daily", "sites", len(s.sites), "day", day.Format(domain.DateLayout))

	var (
		aggregated []domain.Article
		failed     int
		lastErr    error
	)
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "feeds", len(site.Feeds))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			failed++
			lastErr = errors.Wrapf(err, "site %s", site.Name)
			s.warn("site skipped", "site", site.Name, "error", err)
			continue
		}

		req := scanner.Request{
			Day:      day,
			SiteName: site.Name,
			Options:  site.Options,
			Feeds:    toScannerFeeds(site.Feeds),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("site scan failed", "site", site.Name, "collected", len(results), "error", err)
			if len(results) == 0 {
				failed++
				lastErr = errors.Wrapf(err, "scan site %s", site.Name)
				continue
			}
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = site.Name
			}
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(s.sites) > 0 && failed == len(s.sites) {
		return nil, errors.Wrap(lastErr, "all sites failed")
	}

	unique := domain.DedupeArticles(aggregated)
	if len(unique) > s.maxArticles {
		unique = unique[:s.maxArticles]
	}
	s.debug("strategy source done", "collected", len(aggregated), "unique", len(unique))
	return unique, nil
}

func toScannerFeeds(cfg []config.FeedConfig) []scanner.Feed {
	feeds := make([]scanner.Feed, 0, len(cfg))
	for _, feed := range cfg {
		feeds = append(feeds, scanner.Feed{
			Name:  feed.Name,
			URL:   feed.URL,
			Limit: feed.Limit,
		})
	}
	return feeds
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
