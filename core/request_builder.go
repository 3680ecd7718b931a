package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
)

const (
	HeaderSign      = "PAY-API-SIGN"
	HeaderAPIKey    = "PAY-API-KEY"
	HeaderVersion   = "PAY-API-VERSION"
	HeaderTimestamp = "PAY-API-TIMESTAMP"
)

var operationPaths = map[canonical.Operation]string{
	canonical.OrderCreate:          "/api/v1/order/create",
	canonical.OrderQuery:           "/api/v1/order/info",
	canonical.OrderList:            "/api/v1/order/query",
	canonical.OrderClose:           "/api/v1/order/close",
	canonical.RefundCreate:         "/api/v1/refund/create",
	canonical.RefundQuery:          "/api/v1/refund/info",
	canonical.RefundList:           "/api/v1/refund/query",
	canonical.ReportQuery:          "/api/v1/report/query",
	canonical.PayoutCreate:         "/api/v1/withdraw/batch/create",
	canonical.PayoutInfo:           "/api/v1/withdraw/batch/info",
	canonical.PayoutDetail:         "/api/v1/withdraw/batch/detail",
	canonical.OnchainCurrencyQuery: "/api/v1/onchain/currency/query",
	canonical.OnchainQuote:         "/api/v1/onchain/payment/quote",
	canonical.OnchainOrderCreate:   "/api/v1/onchain/payment/create",
	canonical.OnchainOrderQuery:    "/api/v1/onchain/payment/info",
	canonical.OnchainRefundCreate:  "/api/v1/onchain/refund/create",
	canonical.OnchainRefundQuery:   "/api/v1/onchain/refund/info",
	canonical.OnchainRefundList:    "/api/v1/refund/query",
}

// OperationPath returns the provider path an operation is posted to.
func OperationPath(op canonical.Operation) (string, bool) {
	path, ok := operationPaths[op]
	return path, ok
}

// OutboundCall describes one provider call before signing. Fields holds the
// signed business fields; apiKey and timestamp are added by the builder.
type OutboundCall struct {
	Operation canonical.Operation
	Fields    canonical.Fields
	Body      map[string]any
}

// SignedRequest is a fully built provider request.
type SignedRequest struct {
	Operation canonical.Operation
	Canonical string
	Signature string
	Timestamp int64
	Transport TransportRequest
}

// RequestBuilder turns outbound calls into signed transport requests.
type RequestBuilder struct {
	BaseURL    string
	APIKey     string
	APIVersion string
	Timeout    time.Duration
	Signer     RequestSigner
	Now        func() time.Time
}

func NewRequestBuilder(cfg ProviderConfig, signer RequestSigner) *RequestBuilder {
	return &RequestBuilder{
		BaseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		APIKey:     strings.TrimSpace(cfg.APIKey),
		APIVersion: strings.TrimSpace(cfg.APIVersion),
		Timeout:    cfg.Timeout(),
		Signer:     signer,
	}
}

func (b *RequestBuilder) Build(call OutboundCall) (SignedRequest, error) {
	operation := string(call.Operation)
	if b == nil || b.Signer == nil {
		return SignedRequest{}, dependencyError("core: request signer is not configured")
	}
	path, ok := OperationPath(call.Operation)
	if !ok {
		return SignedRequest{}, dependencyError(fmt.Sprintf("core: no provider path for operation %q", operation))
	}

	timestamp := b.now().UnixMilli()
	fields := make(canonical.Fields, len(call.Fields)+2)
	for key, value := range call.Fields {
		fields[key] = value
	}
	fields["apiKey"] = b.APIKey
	fields["timestamp"] = timestamp

	signable, err := canonical.Build(call.Operation, fields)
	if err != nil {
		return SignedRequest{}, dependencyError(err.Error())
	}
	signature, err := b.Signer.Sign(signable)
	if err != nil {
		return SignedRequest{}, cryptoError(operation, err)
	}

	body := call.Body
	if body == nil {
		body = map[string]any{}
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return SignedRequest{}, internalError(operation, err)
	}

	version := b.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return SignedRequest{
		Operation: call.Operation,
		Canonical: signable,
		Signature: signature,
		Timestamp: timestamp,
		Transport: TransportRequest{
			Method: http.MethodPost,
			URL:    b.BaseURL + path,
			Headers: map[string]string{
				HeaderSign:      signature,
				HeaderAPIKey:    b.APIKey,
				HeaderVersion:   version,
				HeaderTimestamp: strconv.FormatInt(timestamp, 10),
				"Content-Type":  "application/json",
			},
			Body:     encoded,
			Timeout:  b.Timeout,
			Metadata: map[string]any{"operation": operation},
		},
	}, nil
}

func (b *RequestBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
