package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DailyBrief/internal/retry"
)

func TestSendPostsHTMLForm(t *testing.T) {
	t.Parallel()

	forms := make(chan url.Values, 1)
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		paths <- r.URL.Path
		forms <- r.PostForm
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL+"/", "123:abc")
	require.NoError(t, n.Send(context.Background(), "-100", "<b>hi</b>"))

	assert.Equal(t, "/bot123:abc/sendMessage", <-paths)
	form := <-forms
	assert.Equal(t, "-100", form.Get("chat_id"))
	assert.Equal(t, "<b>hi</b>", form.Get("text"))
	assert.Equal(t, "HTML", form.Get("parse_mode"))
	assert.Equal(t, "true", form.Get("disable_web_page_preview"))
}

func TestSendClassifiesFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("chat_id") {
		case "throttled":
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`))
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		}
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "tok")
	ctx := context.Background()

	err := n.Send(ctx, "throttled", "x")
	require.Error(t, err)
	assert.True(t, retry.IsTransient(err))
	assert.Equal(t, 3*time.Second, retry.RetryAfter(err))

	err = n.Send(ctx, "broken", "x")
	require.Error(t, err)
	assert.True(t, retry.IsTransient(err))

	err = n.Send(ctx, "missing", "x")
	require.Error(t, err)
	assert.False(t, retry.IsTransient(err))
	assert.True(t, errors.Is(err, retry.ErrPermanent))
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMisconfigured(t *testing.T) {
	t.Parallel()

	err := NewNotifier("", "").Send(context.Background(), "1", "x")
	require.Error(t, err)
	assert.False(t, retry.IsTransient(err))
}

func TestSendNetworkErrorIsTransientAndRedacted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	err := NewNotifier(base, "secret-token").Send(context.Background(), "1", "x")
	require.Error(t, err)
	assert.True(t, retry.IsTransient(err))
	assert.NotContains(t, err.Error(), "secret-token")

	slow := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer slow.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = NewNotifier(slow.URL, "secret-token").Send(ctx, "1", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, retry.IsTransient(err))
	assert.NotContains(t, err.Error(), "secret-token")
}
