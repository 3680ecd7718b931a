package canonical

import (
	"encoding/json"
	"testing"
)

func TestLiteral_PreservesNumericText(t *testing.T) {
	var payload struct {
		Amount    Literal `json:"amount"`
		Text      Literal `json:"text"`
		Timestamp Literal `json:"timestamp"`
		Missing   Literal `json:"missing"`
		Null      Literal `json:"null"`
		Flag      Literal `json:"flag"`
	}
	body := `{"amount": 20.50, "text": "20", "timestamp": 1740125635482, "null": null, "flag": true}`
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Amount != "20.50" {
		t.Fatalf("expected verbatim amount, got %q", payload.Amount)
	}
	if payload.Text != "20" {
		t.Fatalf("expected string value, got %q", payload.Text)
	}
	if payload.Timestamp != "1740125635482" {
		t.Fatalf("expected verbatim timestamp, got %q", payload.Timestamp)
	}
	if payload.Missing != "" || payload.Null != "" {
		t.Fatalf("expected missing and null to be empty")
	}
	if value, ok := payload.Flag.Bool(); !ok || !value {
		t.Fatalf("expected flag literal to parse as true")
	}
	if value, ok := payload.Timestamp.Int64(); !ok || value != 1740125635482 {
		t.Fatalf("expected timestamp to parse, got %d", value)
	}
	if value, ok := payload.Amount.Decimal(); !ok || value.String() != "20.5" {
		t.Fatalf("expected amount to parse as decimal, got %s", value)
	}
}

func TestLiteral_RejectsObjects(t *testing.T) {
	var value Literal
	if err := json.Unmarshal([]byte(`{"a":1}`), &value); err == nil {
		t.Fatalf("expected object literal to be rejected")
	}
}
