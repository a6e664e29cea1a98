package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/config"
	"DailyBrief/internal/domain"
	"DailyBrief/internal/infrastructure/feeds"
	"DailyBrief/internal/retry"
)

func noWait(context.Context, time.Duration) error { return nil }

func feedXML(prefix string, n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>%s %d</title><link>https://example.com/%s/%d</link><description>%s</description></item>`,
			prefix, i, prefix, i, strings.Repeat("w", 600))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

type hnServer struct {
	stories  map[int]story
	failing  map[int]bool
	topCalls atomic.Int32
}

func (h *hnServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/topstories.json" {
		h.topCalls.Add(1)
		ids := make([]int, 0, 150)
		for i := 1; i <= 150; i++ {
			ids = append(ids, i)
		}
		_ = json.NewEncoder(w).Encode(ids)
		return
	}
	var id int
	if _, err := fmt.Sscanf(r.URL.Path, "/item/%d.json", &id); err != nil {
		http.NotFound(w, r)
		return
	}
	if h.failing[id] {
		http.Error(w, "nope", http.StatusBadRequest)
		return
	}
	s, ok := h.stories[id]
	if !ok {
		s = story{ID: id, Title: fmt.Sprintf("Unrelated story %d", id), Score: 1}
	}
	_ = json.NewEncoder(w).Encode(s)
}

func newHN(t *testing.T, h http.Handler) (*HackerNewsClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	client := NewHackerNewsClient(
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRateLimit(1000),
		WithRetryPolicy(retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Sleep: noWait}),
	)
	return client, server
}

func TestHackerNewsSearchFiltersByKeyword(t *testing.T) {
	t.Parallel()

	h := &hnServer{
		stories: map[int]story{
			3:  {ID: 3, Title: "Apple ships new iPad", URL: "https://apple.example/ipad", Score: 120, Descendants: 40, Time: 1717400000},
			7:  {ID: 7, Title: "Show HN: my iOS app", Score: 30, Text: "<p>Built with <i>Swift</i></p>"},
			9:  {ID: 9, Title: "Apple deleted", Deleted: true},
			60: {ID: 60, Title: "iPhone beyond the scan window", Score: 500},
		},
		failing: map[int]bool{4: true},
	}
	client, _ := newHN(t, h)

	posts, err := client.Search(context.Background(), []string{"Apple", "ios"}, 50)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, domain.SocialPost{
		Platform: PlatformHackerNews,
		Title:    "Apple ships new iPad",
		URL:      "https://apple.example/ipad",
		Score:    120,
		Comments: 40,
		Created:  time.Unix(1717400000, 0).UTC(),
		Text:     "",
	}, posts[0])
	assert.Equal(t, "https://news.ycombinator.com/item?id=7", posts[1].URL)
	assert.Equal(t, "Built with Swift", posts[1].Text)
}

func TestHackerNewsSearchRetriesTopStories(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newHN(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	posts, err := client.Search(context.Background(), []string{"apple"}, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRankSortsStablyAndCaps(t *testing.T) {
	t.Parallel()

	posts := []domain.SocialPost{
		{URL: "a", Score: 0},
		{URL: "b", Score: 10},
		{URL: "c", Score: 0},
		{URL: "b", Score: 99},
		{URL: "d", Score: 10},
	}

	ranked := Rank(posts, 3)

	var urls []string
	for _, p := range ranked {
		urls = append(urls, p.URL)
	}
	assert.Equal(t, []string{"b", "d", "a"}, urls)
}

func TestCollectorGathersAllSources(t *testing.T) {
	t.Parallel()

	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			q := strings.ReplaceAll(r.URL.Query().Get("q"), " ", "-")
			_, _ = w.Write([]byte(feedXML(q, 12)))
		case "/sa.xml":
			_, _ = w.Write([]byte(feedXML("sa", 3)))
		default:
			http.Error(w, "down", http.StatusBadGateway)
		}
	}))
	defer feedServer.Close()

	hn, _ := newHN(t, &hnServer{stories: map[int]story{2: {ID: 2, Title: "Mac sales", Score: 77}}})

	cfg := config.SocialConfig{
		MaxPosts:   30,
		SearchURL:  feedServer.URL + "/search",
		QueryLimit: 10,
		Queries:    []string{"Apple stock", "AAPL opinion"},
		Feeds: []config.FeedConfig{
			{Name: "seeking_alpha", URL: feedServer.URL + "/sa.xml", Limit: 15},
			{Name: "broken", URL: feedServer.URL + "/broken.xml"},
		},
		HackerNews: config.HackerNewsConfig{Enabled: true, Scan: 5, Keywords: []string{"mac"}},
	}

	collector := NewCollector(cfg, feeds.NewReader(feedServer.Client()), hn, nil)
	posts, err := collector.FetchPosts(context.Background())
	require.NoError(t, err)

	require.Len(t, posts, 24)
	assert.Equal(t, PlatformHackerNews, posts[0].Platform, "highest score first")
	assert.Equal(t, PlatformGoogleNews, posts[1].Platform)
	assert.Equal(t, "Apple-stock 0", posts[1].Title)
	assert.Equal(t, "seeking_alpha", posts[23].Platform)
	for _, p := range posts {
		assert.LessOrEqual(t, len([]rune(p.Text)), domain.MaxSnippetRunes)
	}
}

func TestCollectorHonoursDisabledHackerNews(t *testing.T) {
	t.Parallel()

	h := &hnServer{}
	hn, _ := newHN(t, h)

	collector := NewCollector(config.SocialConfig{HackerNews: config.HackerNewsConfig{Enabled: false}}, nil, hn, nil)
	posts, err := collector.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Zero(t, h.topCalls.Load())
}
