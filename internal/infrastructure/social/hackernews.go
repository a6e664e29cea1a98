package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/infrastructure/feeds"
	"DailyBrief/internal/retry"
)

const (
	// DefaultHackerNewsURL is the public Hacker News Firebase API.
	DefaultHackerNewsURL = "https://hacker-news.firebaseio.com/v0"

	// PlatformHackerNews labels posts from Hacker News.
	PlatformHackerNews = "hackernews"

	topStoriesWindow = 100
	defaultScan      = 50
	defaultRateLimit = 10
)

// HackerNewsClient scans top stories for subject keywords.
type HackerNewsClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
	logger     *slog.Logger
}

// HackerNewsOption configures the client.
type HackerNewsOption func(*HackerNewsClient)

// WithBaseURL points the client at another API root.
func WithBaseURL(baseURL string) HackerNewsOption {
	return func(c *HackerNewsClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) HackerNewsOption {
	return func(c *HackerNewsClient) {
		c.httpClient = client
	}
}

// WithRateLimit sets requests per second.
func WithRateLimit(perSecond int) HackerNewsOption {
	return func(c *HackerNewsClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// WithRetryPolicy overrides the retry policy of each request.
func WithRetryPolicy(policy retry.Policy) HackerNewsOption {
	return func(c *HackerNewsClient) {
		c.policy = policy
	}
}

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) HackerNewsOption {
	return func(c *HackerNewsClient) {
		c.logger = logger
	}
}

// NewHackerNewsClient creates a client with the public API defaults.
func NewHackerNewsClient(opts ...HackerNewsOption) *HackerNewsClient {
	c := &HackerNewsClient{
		baseURL:    DefaultHackerNewsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
		policy:     retry.Policy{MaxAttempts: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type story struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

// Search checks the first scan stories of the current top list and keeps those
// whose title contains one of keywords. Individual story failures are skipped.
func (c *HackerNewsClient) Search(ctx context.Context, keywords []string, scan int) ([]domain.SocialPost, error) {
	if scan <= 0 {
		scan = defaultScan
	}

	var ids []int
	if err := c.get(ctx, "/topstories.json", &ids); err != nil {
		return nil, errors.Wrap(err, "load top stories")
	}
	if len(ids) > topStoriesWindow {
		ids = ids[:topStoriesWindow]
	}
	if len(ids) > scan {
		ids = ids[:scan]
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	var posts []domain.SocialPost
	for _, id := range ids {
		var s story
		if err := c.get(ctx, fmt.Sprintf("/item/%d.json", id), &s); err != nil {
			if ctx.Err() != nil {
				return posts, ctx.Err()
			}
			c.debug("story skipped", "id", id, "error", err)
			continue
		}
		if s.Deleted || s.Dead || s.Title == "" || !matches(s.Title, lowered) {
			continue
		}
		posts = append(posts, toPost(s))
	}
	return posts, nil
}

func matches(title string, keywords []string) bool {
	title = strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}

func toPost(s story) domain.SocialPost {
	link := s.URL
	if link == "" {
		link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", s.ID)
	}
	return domain.SocialPost{
		Platform: PlatformHackerNews,
		Title:    s.Title,
		URL:      link,
		Score:    s.Score,
		Comments: s.Descendants,
		Created:  time.Unix(s.Time, 0).UTC(),
		Text:     domain.Truncate(feeds.PlainText(s.Text), domain.MaxSnippetRunes),
	}
}

func (c *HackerNewsClient) get(ctx context.Context, path string, out any) error {
	return c.policy.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limit wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return retry.Permanent(errors.Wrap(err, "build request"))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Transient(errors.Wrap(err, "request"))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return retry.FromStatus(resp.StatusCode, errors.Newf("hacker news %s: %s", resp.Status, strings.TrimSpace(string(body))))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(errors.Wrap(err, "decode response"))
		}
		return nil
	})
}

func (c *HackerNewsClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
