package core

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
)

func TestRequestBuilder_SignsCanonicalStringAndSetsHeaders(t *testing.T) {
	signer := &recordingSigner{}
	cfg := testConfig().Provider
	cfg.BaseURL = "https://pay.test/"
	builder := NewRequestBuilder(cfg, signer)
	builder.Now = fixedClock

	signed, err := builder.Build(OutboundCall{
		Operation: canonical.OrderClose,
		Fields:    canonical.Fields{"requestId": "req-1"},
		Body:      map[string]any{"requestId": "req-1"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := "apiKey=test-api-key&requestId=req-1&timestamp=1700000000000"
	if signed.Canonical != want {
		t.Fatalf("expected canonical %q, got %q", want, signed.Canonical)
	}
	if signer.last() != want {
		t.Fatalf("expected signer to receive canonical string, got %q", signer.last())
	}
	req := signed.Transport
	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", req.Method)
	}
	if req.URL != "https://pay.test/api/v1/order/close" {
		t.Fatalf("unexpected url %q", req.URL)
	}
	headers := map[string]string{
		HeaderSign:      "sig-" + want,
		HeaderAPIKey:    testAPIKey,
		HeaderVersion:   DefaultAPIVersion,
		HeaderTimestamp: "1700000000000",
		"Content-Type":  "application/json",
	}
	for name, value := range headers {
		if req.Headers[name] != value {
			t.Fatalf("expected header %s=%q, got %q", name, value, req.Headers[name])
		}
	}
	if req.Timeout != DefaultTimeoutMS*time.Millisecond {
		t.Fatalf("expected default timeout, got %s", req.Timeout)
	}
	if req.Metadata["operation"] != string(canonical.OrderClose) {
		t.Fatalf("expected operation metadata, got %#v", req.Metadata)
	}
}

func TestRequestBuilder_BodyOmitsSignedOnlyFields(t *testing.T) {
	builder := NewRequestBuilder(testConfig().Provider, &recordingSigner{})
	builder.Now = fixedClock

	signed, err := builder.Build(OutboundCall{
		Operation: canonical.OrderQuery,
		Fields:    canonical.Fields{"payOrderId": "P1"},
		Body:      map[string]any{"payOrderId": "P1"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(signed.Transport.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["apiKey"]; ok {
		t.Fatalf("expected apiKey to be header-only, got %#v", body)
	}
	if _, ok := body["timestamp"]; ok {
		t.Fatalf("expected timestamp to be header-only, got %#v", body)
	}
	if body["payOrderId"] != "P1" {
		t.Fatalf("expected business field in body, got %#v", body)
	}
	if signed.Canonical != "apiKey=test-api-key&payOrderId=P1&timestamp=1700000000000" {
		t.Fatalf("expected absent requestId to be dropped, got %q", signed.Canonical)
	}
}

func TestRequestBuilder_RejectsUnknownOperation(t *testing.T) {
	builder := NewRequestBuilder(testConfig().Provider, &recordingSigner{})
	if _, err := builder.Build(OutboundCall{Operation: canonical.Operation("bogus.op")}); err == nil {
		t.Fatalf("expected error for operation without a path")
	}
}

func TestOperationPath_CoversEverySignedOperation(t *testing.T) {
	for op := range operationPaths {
		if _, ok := canonical.FieldOrder(op); !ok {
			t.Fatalf("operation %s has a path but no field order", op)
		}
	}
	if path, _ := OperationPath(canonical.OnchainRefundList); path != "/api/v1/refund/query" {
		t.Fatalf("unexpected on-chain refund list path %q", path)
	}
}
