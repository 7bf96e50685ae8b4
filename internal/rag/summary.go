package rag

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SummaryFields feeds the customer-facing order summary.
type SummaryFields struct {
	CustomerName        string
	PhoneNumber         string
	Location            string
	OrderItems          string
	SpecialInstructions string
}

// AlertFields feeds the operator alert. It extends the summary fields with
// the amount and the provider-reported payment status.
type AlertFields struct {
	CustomerName        string
	PhoneNumber         string
	Location            string
	OrderItems          string
	SpecialInstructions string
	OrderTotal          string
	PaymentStatus       string
}

// SummaryGenerator renders human-readable order text through the language
// model: once per completed order for the operator alert and once for the
// customer summary.
type SummaryGenerator interface {
	OrderSummary(ctx context.Context, fields SummaryFields) (string, error)
	OperatorAlert(ctx context.Context, fields AlertFields) (string, error)
}

// generator implements SummaryGenerator on top of a CompletionClient.
type generator struct {
	completion CompletionClient
	logger     zerolog.Logger
}

// NewSummaryGenerator creates a generator backed by the given completion client.
func NewSummaryGenerator(completion CompletionClient, logger zerolog.Logger) SummaryGenerator {
	return &generator{
		completion: completion,
		logger:     logger.With().Str("component", "summary-generator").Logger(),
	}
}

func (g *generator) OrderSummary(ctx context.Context, fields SummaryFields) (string, error) {
	var prompt bytes.Buffer
	if err := orderSummaryPrompt.Execute(&prompt, fields); err != nil {
		return "", fmt.Errorf("failed to render summary prompt: %w", err)
	}

	summary, err := g.completion.Complete(ctx, prompt.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate order summary: %w", err)
	}

	return summary, nil
}

func (g *generator) OperatorAlert(ctx context.Context, fields AlertFields) (string, error) {
	var prompt bytes.Buffer
	if err := operatorAlertPrompt.Execute(&prompt, fields); err != nil {
		return "", fmt.Errorf("failed to render alert prompt: %w", err)
	}

	alert, err := g.completion.Complete(ctx, prompt.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate operator alert: %w", err)
	}

	return alert, nil
}
