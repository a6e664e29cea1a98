package feeds

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/scanner"
)

const defaultFeedLimit = 10

// RSSScanner reads every configured feed of a site.
type RSSScanner struct {
	reader *Reader
	now    func() time.Time
}

// NewRSSScanner wires the feed reader.
func NewRSSScanner(reader *Reader) *RSSScanner {
	if reader == nil {
		reader = NewReader(nil)
	}
	return &RSSScanner{reader: reader, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan takes the newest Limit entries of each feed. A failing feed does not
// stop the others; the failures are returned next to what was collected.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Feeds) == 0 {
		return nil, errors.Newf("no feeds provided for site %s", req.SiteName)
	}

	var (
		results []domain.Article
		errs    error
	)
	for _, feed := range req.Feeds {
		articles, err := s.scanFeed(ctx, req.SiteName, feed)
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "feed %s", feed.Name))
			continue
		}
		results = append(results, articles...)
	}
	return results, errs
}

func (s *RSSScanner) scanFeed(ctx context.Context, site string, feed scanner.Feed) ([]domain.Article, error) {
	parsed, err := s.reader.Fetch(ctx, feed.URL)
	if err != nil {
		return nil, err
	}

	limit := feed.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	fetchedAt := s.now().UTC()
	articles := make([]domain.Article, 0, min(limit, len(parsed.Items)))
	for _, item := range parsed.Items {
		if len(articles) == limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		articles = append(articles, domain.Article{
			Title:     title,
			Source:    site,
			URL:       link,
			Published: Published(item, fetchedAt),
			Summary:   Summary(item),
		})
	}
	return articles, nil
}
