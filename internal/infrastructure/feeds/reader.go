package feeds

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/mmcdole/gofeed"

	"DailyBrief/internal/retry"
)

const userAgent = "DailyBrief/1.0"

// Reader downloads and parses RSS/Atom documents.
type Reader struct {
	client *http.Client
}

// NewReader wires an HTTP client; nil selects a client with a 20s timeout.
func NewReader(client *http.Client) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Reader{client: client}
}

// Fetch returns the parsed feed at feedURL. HTTP failures are classified as
// transient or permanent for the retry policy.
func (r *Reader) Fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, retry.Transient(errors.Wrap(err, "request feed"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, retry.FromStatus(resp.StatusCode, errors.Newf("feed returned %s", resp.Status))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, retry.Permanent(errors.Wrap(err, "parse feed"))
	}
	return feed, nil
}

// PlainText reduces an HTML fragment to its visible text with collapsed
// whitespace.
func PlainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Published picks the best timestamp of an item, falling back to fallback.
func Published(item *gofeed.Item, fallback time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return fallback
	}
}

// Summary prefers the item description and falls back to its content.
func Summary(item *gofeed.Item) string {
	if text := PlainText(item.Description); text != "" {
		return text
	}
	return PlainText(item.Content)
}
