package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/ports"
	"DailyBrief/internal/retry"
)

// DefaultAPIURL is the public Bot API host.
const DefaultAPIURL = "https://api.telegram.org"

// Notifier sends report parts to a Telegram chat via bot API.
type Notifier struct {
	apiURL   string
	botToken string
	client   *http.Client
}

var _ ports.Messenger = (*Notifier)(nil)

// NewNotifier registers the bot token and API host. An empty apiURL selects
// DefaultAPIURL.
func NewNotifier(apiURL, botToken string) *Notifier {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Notifier{
		apiURL:   strings.TrimRight(apiURL, "/"),
		botToken: botToken,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Send posts one HTML message. Throttling and server errors come back marked
// transient, carrying the server's retry_after hint when present.
func (n *Notifier) Send(ctx context.Context, chatID, text string) error {
	if n.botToken == "" || chatID == "" || n.client == nil {
		return retry.Permanent(errors.New("telegram notifier misconfigured"))
	}

	endpoint := n.apiURL + "/bot" + n.botToken + "/sendMessage"
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return retry.Permanent(errors.Wrap(err, "new request"))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		// The token is part of the URL; keep it out of logs.
		msg := redact(err.Error(), n.botToken)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Mark(errors.Newf("telegram request aborted: %s", msg), ctxErr)
		}
		return retry.Transient(errors.Newf("telegram request failed: %s", msg))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var decoded apiResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode == http.StatusOK && decoded.OK {
		return nil
	}

	desc := decoded.Description
	if desc == "" {
		desc = strings.TrimSpace(string(body))
	}
	failure := retry.FromStatus(resp.StatusCode, errors.Newf("telegram error %s: %s", resp.Status, desc))
	if decoded.Parameters.RetryAfter > 0 {
		failure = retry.WithRetryAfter(failure, time.Duration(decoded.Parameters.RetryAfter)*time.Second)
	}
	return failure
}

func redact(msg, secret string) string {
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, secret, "<token>")
}
