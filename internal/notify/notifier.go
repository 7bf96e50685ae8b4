package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dishdash/internal/config"

	"github.com/rs/zerolog"
)

// Notifier sends a text message to the configured operator number. Callers
// treat it as fire-and-forget: a send failure is logged, never surfaced to
// the customer.
type Notifier interface {
	Send(ctx context.Context, body string) (string, error)
}

// client implements Notifier against a Twilio-style messaging REST API.
type client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	to         string
	logger     zerolog.Logger
}

// NewClient creates a messaging client from configuration.
func NewClient(cfg config.MessagingConfig, logger zerolog.Logger) Notifier {
	return &client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		to:         cfg.OperatorTo,
		logger:     logger.With().Str("component", "notifier").Logger(),
	}
}

type messageResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
}

// Send delivers a single message and returns the provider's message ID.
func (c *client) Send(ctx context.Context, body string) (string, error) {
	form := url.Values{}
	form.Set("Body", body)
	form.Set("From", c.from)
	form.Set("To", c.to)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build message request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("message request failed")
		return "", fmt.Errorf("message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().Int("status", resp.StatusCode).Msg("message rejected by provider")
		return "", fmt.Errorf("message rejected by provider: status %d", resp.StatusCode)
	}

	var decoded messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode message response: %w", err)
	}

	c.logger.Info().Str("message_id", decoded.SID).Msg("operator notification sent")

	return decoded.SID, nil
}
