// Package whatsapp talks to the WhatsApp Business Cloud API: outbound text
// messages, inbound webhook verification and parsing, and reply
// classification.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Sender is what the reminder flow needs to deliver a message.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

type Config struct {
	APIURL        string
	Token         string
	PhoneNumberID string
	Timeout       time.Duration
	MaxRetries    int
	RetryBase     time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = "https://graph.facebook.com/v20.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// HTTPError is a non-2xx response from the Cloud API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return fmt.Sprintf("whatsapp http %d: %s", e.StatusCode, body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SendText delivers body to the normalized number to and returns the
// provider message id. Without a token the message is only logged.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	recipient := strings.TrimPrefix(to, "+")
	if recipient == "" {
		return "", ErrInvalidPhone
	}

	if c.cfg.Token == "" {
		c.logger.InfoContext(ctx, "whatsapp message (not sent, no token)", "to", to, "body", body)
		return "dev-" + uuid.New().String(), nil
	}

	msg := textMessage{MessagingProduct: "whatsapp", To: recipient, Type: "text"}
	msg.Text.Body = body
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("whatsapp: encode request: %w", err)
	}

	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.NewExponential(c.cfg.RetryBase))

	var id string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := c.doOnce(ctx, payload)
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) && !httpErr.retryable() {
				return err
			}
			c.logger.WarnContext(ctx, "whatsapp send failed", "error", err)
			return retry.RetryableError(err)
		}
		id = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) doOnce(ctx context.Context, payload []byte) (string, error) {
	url := fmt.Sprintf("%s/%s/messages", c.cfg.APIURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("whatsapp: decode response: %w", err)
	}
	if len(out.Messages) == 0 {
		return "", nil
	}
	return out.Messages[0].ID, nil
}
