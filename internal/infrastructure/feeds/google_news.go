package feeds

import (
	"context"
	"net/url"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/scanner"
)

// DefaultSearchEndpoint is the Google News RSS search endpoint.
const DefaultSearchEndpoint = "https://news.google.com/rss/search"

// SearchURL builds a Google News RSS search URL for query in US English.
func SearchURL(endpoint, query string) (string, error) {
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "invalid search endpoint %s", endpoint)
	}
	params := parsed.Query()
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	parsed.RawQuery = params.Encode()
	return parsed.String(), nil
}

// GoogleNewsScanner turns the site's "query" option into a search feed.
type GoogleNewsScanner struct {
	rss *RSSScanner
}

// NewGoogleNewsScanner reuses the RSS scanner for the search results feed.
func NewGoogleNewsScanner(reader *Reader) *GoogleNewsScanner {
	return &GoogleNewsScanner{rss: NewRSSScanner(reader)}
}

// Name identifies the strategy inside the registry.
func (g *GoogleNewsScanner) Name() string {
	return "google-news"
}

// Scan searches for the configured query. Feeds only contribute their limit.
func (g *GoogleNewsScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	query := req.Options["query"]
	if query == "" {
		return nil, errors.Newf("site %s has no query option", req.SiteName)
	}
	searchURL, err := SearchURL(req.Options["endpoint"], query)
	if err != nil {
		return nil, err
	}

	limit := defaultFeedLimit
	if len(req.Feeds) > 0 && req.Feeds[0].Limit > 0 {
		limit = req.Feeds[0].Limit
	}

	search := req
	search.Feeds = []scanner.Feed{{Name: "search", URL: searchURL, Limit: limit}}
	return g.rss.Scan(ctx, search)
}
