package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kjannette/spimex-view/internal/httputil"
)

// Sender posts operator alerts to a Slack or Discord style webhook.
// Without a webhook URL alerts are only logged.
type Sender struct {
	webhookURL string
	botName    string
	cooldown   time.Duration
	httpClient *http.Client
	retry      httputil.RetryConfig
	now        func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewSender(webhookURL, botName string, cooldown time.Duration) *Sender {
	if botName == "" {
		botName = "SpimexView"
	}
	return &Sender{
		webhookURL: webhookURL,
		botName:    botName,
		cooldown:   cooldown,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// UpstreamFailure alerts that the trading API answered endpoint with a 5xx.
// Repeats for the same endpoint within the cooldown are dropped; the return
// value reports whether the alert went out.
func (s *Sender) UpstreamFailure(endpoint string, status int) bool {
	if s == nil || !s.allow(endpoint) {
		return false
	}
	s.Send(fmt.Sprintf("trading API %s returned HTTP %d", endpoint, status))
	return true
}

func (s *Sender) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if last, ok := s.lastSent[key]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	s.lastSent[key] = now
	return true
}

func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.botName, msg)
	slog.Warn("alert", "message", formatted)

	if s.webhookURL == "" {
		return
	}

	body, err := json.Marshal(s.formatPayload(formatted))
	if err != nil {
		slog.Error("alert marshal failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		slog.Error("alert delivery failed", "error", err)
		return
	}
	resp.Body.Close()
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.botName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.botName,
	}
}

func (s *Sender) Enabled() bool {
	return s != nil && s.webhookURL != ""
}
