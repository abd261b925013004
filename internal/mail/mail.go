package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrQueueFull = errors.New("mail queue full")

type Message struct {
	To       string
	Subject  string
	HTML     string
	Text     string
	Template string
}

// Sender delivers a single rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is the
// development driver.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail delivered to log",
		"to", msg.To,
		"subject", msg.Subject,
		"template", msg.Template,
		"body", msg.Text)
	return nil
}

type HTTPConfig struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
}

// HTTPSender posts messages to a transactional mail provider as JSON.
type HTTPSender struct {
	client *resty.Client
	from   string
	logger *slog.Logger
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func NewHTTPSender(cfg HTTPConfig, logger *slog.Logger) *HTTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPSender{client: client, from: cfg.From, logger: logger}
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	var result sendResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    s.from,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Text:    msg.Text,
		}).
		SetResult(&result).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("mail provider request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode())
	}

	s.logger.Debug("mail accepted by provider",
		"to", msg.To,
		"template", msg.Template,
		"provider_id", result.ID)
	return nil
}
