// Package nlq turns a natural-language question into a structured decision:
// the classified intent, a candidate SQL statement for historical questions,
// and a chart hint. The candidate SQL is untrusted output of the completion
// service; the sqlguard downstream decides whether it runs.
package nlq

import (
	"context"
	"fmt"
	"strings"
)

// Intent is the classified purpose of a user question.
type Intent string

const (
	IntentHistorical  Intent = "Historical"
	IntentForecasting Intent = "Forecasting"
	IntentUnknown     Intent = "Unknown"
)

// Decision is the structured outcome of resolving one question.
type Decision struct {
	Intent  Intent `json:"intent"`
	SQL     string `json:"sql,omitempty"`
	Message string `json:"message,omitempty"`
	Chart   string `json:"chart,omitempty"`
}

// ChatCompleter maps (system prompt, user prompt, temperature) to a text
// reply. Implemented by the Groq client; faked in tests.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// Resolver classifies questions through a ChatCompleter.
type Resolver struct {
	completer   ChatCompleter
	temperature float64
}

func NewResolver(completer ChatCompleter, temperature float64) *Resolver {
	return &Resolver{completer: completer, temperature: temperature}
}

// Resolve normalizes the question, asks the completion service for a JSON
// decision, and post-processes the candidate SQL. Unparseable model replies
// yield an error rather than a fabricated decision.
func (r *Resolver) Resolve(ctx context.Context, question string) (Decision, error) {
	normalized := NormalizeQuestion(question)
	if normalized == "" {
		return Decision{}, fmt.Errorf("question is empty")
	}

	reply, err := r.completer.Complete(ctx, SystemPrompt, normalized, r.temperature)
	if err != nil {
		return Decision{}, fmt.Errorf("completion request: %w", err)
	}

	var raw struct {
		SQL     *string `json:"sql"`
		Intent  string  `json:"intent"`
		Message string  `json:"message"`
		Chart   *string `json:"chart"`
	}
	if !extractJSON(reply, &raw) {
		return Decision{}, fmt.Errorf("could not parse decision from model reply")
	}

	decision := Decision{
		Intent:  parseIntent(raw.Intent),
		Message: raw.Message,
		Chart:   "table",
	}
	if raw.Chart != nil && strings.TrimSpace(*raw.Chart) != "" {
		decision.Chart = strings.TrimSpace(*raw.Chart)
	}
	if raw.SQL != nil {
		decision.SQL = NormalizeSQL(*raw.SQL)
	}
	return decision, nil
}

func parseIntent(value string) Intent {
	switch strings.TrimSpace(value) {
	case string(IntentHistorical):
		return IntentHistorical
	case string(IntentForecasting):
		return IntentForecasting
	default:
		return IntentUnknown
	}
}
