package nlq

import (
	"context"
	"errors"
	"testing"
)

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, _ float64) (string, error) {
	f.system = system
	f.user = user
	return f.reply, f.err
}

func TestResolveHistoricalDecision(t *testing.T) {
	completer := &fakeCompleter{reply: `{"sql":"SELECT * FROM orders","intent":"Historical","message":"","chart":"bar"}`}
	resolver := NewResolver(completer, 0.1)

	decision, err := resolver.Resolve(context.Background(), "Top orders by freight?")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Intent != IntentHistorical {
		t.Fatalf("Intent = %q", decision.Intent)
	}
	if decision.SQL != "SELECT * FROM orders" {
		t.Fatalf("SQL = %q", decision.SQL)
	}
	if decision.Chart != "bar" {
		t.Fatalf("Chart = %q", decision.Chart)
	}
	if completer.user != "Top orders by freight" {
		t.Fatalf("question was not normalized, user prompt = %q", completer.user)
	}
	if completer.system != SystemPrompt {
		t.Fatal("system prompt was not forwarded")
	}
}

func TestResolveForecastingDecision(t *testing.T) {
	completer := &fakeCompleter{reply: `{"sql":null,"intent":"Forecasting","message":"","chart":"line"}`}
	resolver := NewResolver(completer, 0.1)

	decision, err := resolver.Resolve(context.Background(), "What will sales look like next month?")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Intent != IntentForecasting {
		t.Fatalf("Intent = %q", decision.Intent)
	}
	if decision.SQL != "" {
		t.Fatalf("SQL = %q, want empty", decision.SQL)
	}
	if decision.Chart != "line" {
		t.Fatalf("Chart = %q", decision.Chart)
	}
}

func TestResolveRepairsModelSQL(t *testing.T) {
	completer := &fakeCompleter{reply: "Here you go:\n```json\n{\"sql\":\"```sql\\nSELECT * FROM `order details`\\n```\",\"intent\":\"Historical\",\"message\":\"\",\"chart\":null}\n```"}
	resolver := NewResolver(completer, 0.1)

	decision, err := resolver.Resolve(context.Background(), "sales per order detail")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.SQL != "SELECT * FROM order_details" {
		t.Fatalf("SQL = %q", decision.SQL)
	}
	if decision.Chart != "table" {
		t.Fatalf("Chart = %q, want default table", decision.Chart)
	}
}

func TestResolveUnknownIntentFallback(t *testing.T) {
	completer := &fakeCompleter{reply: `{"sql":null,"intent":"Nonsense","message":"cannot help","chart":null}`}
	resolver := NewResolver(completer, 0.1)

	decision, err := resolver.Resolve(context.Background(), "what is the weather")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if decision.Intent != IntentUnknown {
		t.Fatalf("Intent = %q, want Unknown", decision.Intent)
	}
	if decision.Message != "cannot help" {
		t.Fatalf("Message = %q", decision.Message)
	}
}

func TestResolveUnparseableReply(t *testing.T) {
	resolver := NewResolver(&fakeCompleter{reply: "I am not JSON at all"}, 0.1)
	if _, err := resolver.Resolve(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for unparseable reply")
	}
}

func TestResolveEmptyQuestion(t *testing.T) {
	resolver := NewResolver(&fakeCompleter{}, 0.1)
	if _, err := resolver.Resolve(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestResolveCompleterError(t *testing.T) {
	resolver := NewResolver(&fakeCompleter{err: errors.New("boom")}, 0.1)
	if _, err := resolver.Resolve(context.Background(), "question"); err == nil {
		t.Fatal("expected completion error to propagate")
	}
}
