// Package social collects community discussion about the subject from news
// search feeds, analysis feeds and Hacker News.
package social

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/infrastructure/feeds"
	"DailyBrief/internal/ports"
)

// PlatformGoogleNews labels discussion found through news search.
const PlatformGoogleNews = "google_news"

const (
	defaultMaxPosts   = 30
	defaultQueryLimit = 10
)

// Collector implements ports.PostSource. Every source is optional and a
// failing source only costs its own posts.
type Collector struct {
	cfg        config.SocialConfig
	reader     *feeds.Reader
	hackerNews *HackerNewsClient
	pacer      *rate.Limiter
	now        func() time.Time
	logger     *slog.Logger
}

var _ ports.PostSource = (*Collector)(nil)

// NewCollector wires the sources. hn may be nil to skip Hacker News.
func NewCollector(cfg config.SocialConfig, reader *feeds.Reader, hn *HackerNewsClient, logger *slog.Logger) *Collector {
	if reader == nil {
		reader = feeds.NewReader(nil)
	}
	if !cfg.HackerNews.Enabled {
		hn = nil
	}
	pacer := rate.NewLimiter(rate.Inf, 1)
	if wait, err := time.ParseDuration(cfg.RequestWait); err == nil && wait > 0 {
		pacer = rate.NewLimiter(rate.Every(wait), 1)
	}
	return &Collector{
		cfg:        cfg,
		reader:     reader,
		hackerNews: hn,
		pacer:      pacer,
		now:        time.Now,
		logger:     logger,
	}
}

// FetchPosts gathers, de-duplicates and ranks posts by score (stable), capped
// at the configured maximum. It only fails when the context is cancelled.
func (c *Collector) FetchPosts(ctx context.Context) ([]domain.SocialPost, error) {
	var all []domain.SocialPost

	queryLimit := c.cfg.QueryLimit
	if queryLimit <= 0 {
		queryLimit = defaultQueryLimit
	}
	for _, query := range c.cfg.Queries {
		searchURL, err := feeds.SearchURL(c.cfg.SearchURL, query)
		if err != nil {
			c.warn("discussion query skipped", "query", query, "error", err)
			continue
		}
		posts, err := c.fromFeed(ctx, PlatformGoogleNews, searchURL, queryLimit)
		if err != nil {
			c.warn("discussion query failed", "query", query, "error", err)
			continue
		}
		c.debug("discussion query done", "query", query, "count", len(posts))
		all = append(all, posts...)
	}

	for _, feed := range c.cfg.Feeds {
		posts, err := c.fromFeed(ctx, feed.Name, feed.URL, feed.Limit)
		if err != nil {
			c.warn("discussion feed failed", "feed", feed.Name, "error", err)
			continue
		}
		c.debug("discussion feed done", "feed", feed.Name, "count", len(posts))
		all = append(all, posts...)
	}

	if c.hackerNews != nil {
		posts, err := c.hackerNews.Search(ctx, c.cfg.HackerNews.Keywords, c.cfg.HackerNews.Scan)
		if err != nil {
			c.warn("hacker news failed", "error", err)
		}
		c.debug("hacker news done", "count", len(posts))
		all = append(all, posts...)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "collect posts")
	}

	return Rank(all, c.cfg.MaxPosts), nil
}

// Rank de-duplicates by URL, orders by score descending keeping the original
// order for equal scores, and keeps at most max posts.
func Rank(posts []domain.SocialPost, max int) []domain.SocialPost {
	if max <= 0 {
		max = defaultMaxPosts
	}
	ranked := domain.DedupePosts(posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

func (c *Collector) fromFeed(ctx context.Context, platform, feedURL string, limit int) ([]domain.SocialPost, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "pace requests")
	}
	parsed, err := c.reader.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	now := c.now().UTC()
	posts := make([]domain.SocialPost, 0, min(limit, len(parsed.Items)))
	for _, item := range parsed.Items {
		if len(posts) == limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		posts = append(posts, domain.SocialPost{
			Platform: platform,
			Title:    title,
			URL:      link,
			Created:  feeds.Published(item, now),
			Text:     domain.Truncate(feeds.Summary(item), domain.MaxSnippetRunes),
		})
	}
	return posts, nil
}

func (c *Collector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Collector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
