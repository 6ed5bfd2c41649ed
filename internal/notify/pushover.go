package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const pushTimeout = 10 * time.Second

// Pushover sends notifications through the Pushover message API, or any
// endpoint that accepts the same form-encoded POST.
type Pushover struct {
	endpoint string
	token    string
	user     string
	client   *http.Client
	logger   *log.Logger
}

// NewPushover creates a notifier for the given endpoint. An empty
// endpoint returns a disabled notifier that logs messages instead of
// sending them, so the chatbot works without Pushover credentials.
func NewPushover(endpoint, token, user string, logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.Default()
	}
	if endpoint == "" {
		return &disabled{logger: logger}
	}
	return &Pushover{
		endpoint: endpoint,
		token:    token,
		user:     user,
		client:   &http.Client{Timeout: pushTimeout},
		logger:   logger,
	}
}

// Push sends one message as a form-encoded POST with the fields
// token, user and message.
func (p *Pushover) Push(ctx context.Context, message string) error {
	form := url.Values{}
	form.Set("token", p.token)
	form.Set("user", p.user)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	p.logger.Debug("push notification sent", "chars", len(message))
	return nil
}

// disabled is the notifier used when no push endpoint is configured.
type disabled struct {
	logger *log.Logger
}

func (d *disabled) Push(_ context.Context, message string) error {
	d.logger.Info("push notifications disabled, message dropped", "message", message)
	return nil
}
