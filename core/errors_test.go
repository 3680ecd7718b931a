package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kucoinpay/security"
	"github.com/shopspring/decimal"
)

func TestServiceErrorMapper_AssignsStableCodes(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		textCode string
		status   int
	}{
		{"decrypt", fmt.Errorf("open: %w", security.ErrDecrypt), ServiceErrorDecryptFailed, http.StatusBadRequest},
		{"crypto", fmt.Errorf("sign: %w", security.ErrCrypto), ServiceErrorCryptoFailure, http.StatusInternalServerError},
		{"key", fmt.Errorf("load: %w", security.ErrKey), ServiceErrorCryptoFailure, http.StatusInternalServerError},
		{"not found", ErrRecordNotFound, ServiceErrorNotFound, http.StatusNotFound},
		{"duplicate", stderrors.New("pq: duplicate key value violates unique constraint"), ServiceErrorConflict, http.StatusConflict},
		{"required", stderrors.New("core: provider.api_key is required"), ServiceErrorBadInput, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapError(tc.err)
			if mapped == nil {
				t.Fatalf("expected mapped error")
			}
			if mapped.TextCode != tc.textCode {
				t.Fatalf("expected text code %q, got %q", tc.textCode, mapped.TextCode)
			}
			if mapped.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, mapped.Code)
			}
		})
	}
	if MapError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestProviderFailureCarriesProviderCodeAndCatalogMessage(t *testing.T) {
	transport := newScriptedTransport()
	transport.reply("/api/v1/order/close", 200, `{"code":"400100","msg":"order not exist","success":false}`)
	cfg := testConfig()
	cfg.ErrorMessages = map[string]string{"400100": "The order does not exist"}
	svc, err := NewService(cfg,
		WithTransport(transport),
		WithSigner(&recordingSigner{}),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.CloseOrder(context.Background(), CloseOrderRequest{RequestID: "req-1"})
	if err == nil {
		t.Fatalf("expected provider failure")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ServiceErrorProviderOperationFailed {
		t.Fatalf("expected provider failure code, got %q", richErr.TextCode)
	}
	if richErr.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", richErr.Category)
	}
	if richErr.Message != "The order does not exist" {
		t.Fatalf("expected catalog message, got %q", richErr.Message)
	}
	if richErr.Metadata[ErrorMetaProviderCode] != "400100" {
		t.Fatalf("expected provider code metadata, got %#v", richErr.Metadata)
	}
	if richErr.Metadata[ErrorMetaProviderMessage] != "order not exist" {
		t.Fatalf("expected raw provider message metadata, got %#v", richErr.Metadata)
	}
}

func TestProviderFailureOnHTTPStatus(t *testing.T) {
	transport := newScriptedTransport()
	transport.reply("/api/v1/order/close", 503, `upstream unavailable`)
	svc := newTestService(t, transport, &recordingSigner{})

	_, err := svc.CloseOrder(context.Background(), CloseOrderRequest{RequestID: "req-1"})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.Metadata[ErrorMetaHTTPStatus] != 503 {
		t.Fatalf("expected http status metadata, got %#v", richErr.Metadata)
	}
	if richErr.Metadata[ErrorMetaProviderMessage] != "upstream unavailable" {
		t.Fatalf("expected raw body as provider message, got %#v", richErr.Metadata)
	}
}

func TestTransportFailureIsDownstream(t *testing.T) {
	transport := newScriptedTransport()
	transport.fail("/api/v1/order/close", stderrors.New("dial tcp: timeout"))
	svc := newTestService(t, transport, &recordingSigner{})

	_, err := svc.CloseOrder(context.Background(), CloseOrderRequest{RequestID: "req-1"})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ServiceErrorProviderOperationFailed || richErr.Code != http.StatusBadGateway {
		t.Fatalf("expected downstream failure, got %q/%d", richErr.TextCode, richErr.Code)
	}
}

func TestSignerFailureAbortsRequest(t *testing.T) {
	transport := newScriptedTransport()
	signer := &recordingSigner{err: fmt.Errorf("sign: %w", security.ErrCrypto)}
	svc := newTestService(t, transport, signer)

	_, err := svc.CloseOrder(context.Background(), CloseOrderRequest{RequestID: "req-1"})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ServiceErrorCryptoFailure {
		t.Fatalf("expected crypto failure code, got %q", richErr.TextCode)
	}
	if transport.count() != 0 {
		t.Fatalf("expected no request after signing failure")
	}
}

func TestValidationErrorListsEveryMissingField(t *testing.T) {
	svc := newTestService(t, newScriptedTransport(), &recordingSigner{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{OrderAmount: decimal.Zero})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", richErr.Category)
	}
	fields := map[string]bool{}
	for _, fieldErr := range richErr.AllValidationErrors() {
		fields[fieldErr.Field] = true
	}
	for _, name := range []string{"orderAmount", "orderCurrency", "goods", "returnUrl", "cancelUrl"} {
		if !fields[name] {
			t.Fatalf("expected %s in validation errors, got %#v", name, richErr.AllValidationErrors())
		}
	}
}

func TestPersistenceFailureSurfaces(t *testing.T) {
	transport := newScriptedTransport()
	stores := &recordingStores{err: errStoreDown}
	svc := newTestService(t, transport, &recordingSigner{}, WithRepositoryFactory(stores))

	_, err := svc.CloseOrder(context.Background(), CloseOrderRequest{RequestID: "req-1"})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if richErr.TextCode != ServiceErrorPersistenceFailed {
		t.Fatalf("expected persistence failure code, got %q", richErr.TextCode)
	}
}
