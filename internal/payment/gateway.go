package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"dishdash/internal/config"

	"github.com/rs/zerolog"
)

// Metadata is the order context attached to a payment initialization.
type Metadata struct {
	OrderID       string `json:"order_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
}

// InitializeRequest is the input to a payment initialization. Amount is in
// major currency units; the client converts to the provider's minor unit.
type InitializeRequest struct {
	Email    string
	Amount   float64
	Metadata Metadata
}

// InitializeResult is the provider's response to an initialization attempt.
// When Success is false, Message carries the provider's failure reason.
type InitializeResult struct {
	Success          bool
	AuthorizationURL string
	AccessCode       string
	Reference        string
	Message          string
}

// VerifyResult is the provider's response to a verification attempt.
type VerifyResult struct {
	Success bool
	Status  string
	Message string
}

// Gateway issues initialize and verify requests against the payment
// provider. Implementations hold no local state between calls. A returned
// error means the provider could not be reached or answered malformed; a
// provider-side decline comes back as a result with Success=false.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// client implements Gateway against a Paystack-style REST API.
type client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	currency    string
	callbackURL string
	logger      zerolog.Logger
}

// NewClient creates a payment gateway client from configuration.
func NewClient(cfg config.PaymentConfig, logger zerolog.Logger) Gateway {
	return &client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		currency:    cfg.Currency,
		callbackURL: cfg.CallbackURL,
		logger:      logger.With().Str("component", "payment-gateway").Logger(),
	}
}

type initializePayload struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Metadata    Metadata `json:"metadata"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
	} `json:"data"`
}

// Initialize starts a transaction with the provider. The amount is
// transmitted in the provider's minor currency unit (x100), which is a hard
// requirement of the provider's wire format.
func (c *client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	amountMinor := int64(math.Round(req.Amount * 100))

	payload := initializePayload{
		Email:       req.Email,
		Amount:      amountMinor,
		Currency:    c.currency,
		Metadata:    req.Metadata,
		CallbackURL: c.callbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initialize payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", req.Metadata.OrderID).Msg("initialize request failed")
		return nil, fmt.Errorf("payment initialize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("order_id", req.Metadata.OrderID).
			Msg("initialize returned non-200")
		return &InitializeResult{Success: false, Message: "Payment initialization failed"}, nil
	}

	var decoded initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode initialize response: %w", err)
	}

	if !decoded.Status {
		return &InitializeResult{Success: false, Message: decoded.Message}, nil
	}

	c.logger.Info().
		Str("order_id", req.Metadata.OrderID).
		Str("reference", decoded.Data.Reference).
		Int64("amount_minor", amountMinor).
		Msg("payment initialized")

	return &InitializeResult{
		Success:          true,
		AuthorizationURL: decoded.Data.AuthorizationURL,
		AccessCode:       decoded.Data.AccessCode,
		Reference:        decoded.Data.Reference,
	}, nil
}

// Verify checks the status of a previously initialized transaction.
func (c *client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("reference", reference).Msg("verify request failed")
		return nil, fmt.Errorf("payment verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("reference", reference).
			Msg("verify returned non-200")
		return &VerifyResult{Success: false, Message: "Verification request failed"}, nil
	}

	var decoded verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode verify response: %w", err)
	}

	if !decoded.Status || decoded.Data.Status != "success" {
		return &VerifyResult{Success: false, Status: decoded.Data.Status, Message: "Payment verification failed"}, nil
	}

	c.logger.Info().Str("reference", reference).Msg("payment verified")

	return &VerifyResult{
		Success: true,
		Status:  decoded.Data.Status,
		Message: "Payment verified successfully",
	}, nil
}
