package webhooks

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/goliatone/go-kucoinpay/core"
	"github.com/goliatone/go-kucoinpay/security"
)

const testAPIKey = "test-api-key"
const testTimestamp = "1740125700000"

var (
	counterpartyOnce sync.Once
	counterpartyKey  *rsa.PrivateKey
	counterpartyErr  error
)

func testCounterpartyKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	counterpartyOnce.Do(func() {
		counterpartyKey, counterpartyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if counterpartyErr != nil {
		t.Fatalf("generate counterparty key: %v", counterpartyErr)
	}
	return counterpartyKey
}

type keyVerifier struct {
	key *rsa.PublicKey
}

func (v keyVerifier) Verify(canonical string, signature string) bool {
	return security.VerifyWithKey(canonical, signature, v.key)
}

func testVerifier(t *testing.T) core.SignatureVerifier {
	return keyVerifier{key: &testCounterpartyKey(t).PublicKey}
}

// signedRequest signs canonical the way the counterparty does and attaches
// the notification headers.
func signedRequest(t *testing.T, body string, canonical string) Request {
	t.Helper()
	signature, err := security.SignWithKey(canonical, testCounterpartyKey(t))
	if err != nil {
		t.Fatalf("sign canonical: %v", err)
	}
	return Request{
		Headers: map[string]string{
			"pay-api-timestamp": testTimestamp,
			"Pay-Api-Sign":      signature,
			"PAY-API-VERSION":   "1.0",
		},
		Body: []byte(body),
	}
}

func testCodec(t *testing.T) *security.PayerDetailCodec {
	t.Helper()
	codec, err := security.NewPayerDetailCodec([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

type recordingHandlers struct {
	mu     sync.Mutex
	calls  []EventType
	events []Event
	err    error
}

func (h *recordingHandlers) record(event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, event.Type())
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandlers) HandleTrade(_ context.Context, event TradeEvent) error {
	return h.record(event)
}

func (h *recordingHandlers) HandleRefund(_ context.Context, event RefundEvent) error {
	return h.record(event)
}

func (h *recordingHandlers) HandlePayout(_ context.Context, event PayoutEvent) error {
	return h.record(event)
}

func (h *recordingHandlers) HandleOnchainPayment(_ context.Context, event OnchainPaymentEvent) error {
	return h.record(event)
}

func (h *recordingHandlers) HandleOnchainRefund(_ context.Context, event OnchainRefundEvent) error {
	return h.record(event)
}

type recordingMetrics struct {
	mu       sync.Mutex
	counters []map[string]string
}

func (m *recordingMetrics) IncCounter(_ context.Context, _ string, _ int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, tags)
}

func (*recordingMetrics) ObserveHistogram(context.Context, string, float64, map[string]string) {}

const tradeBody = `{
	"orderType": "TRADE",
	"requestId": "1763124196024",
	"payOrderId": "kpt_2025dummy123456",
	"orderAmount": "20",
	"orderCurrency": "USDT",
	"reference": "my-reference",
	"refundCurrency": "USDT",
	"status": "USER_PAY_COMPLETED",
	"subMerchantId": "sub001",
	"payTime": 1740125635482,
	"canRefundAmount": 20.00,
	"retrieveKycStatus": true,
	"goods": [{"goodsId": "g1", "goodsName": "Coffee"}]
}`

const tradeCanonical = "apiKey=test-api-key&orderAmount=20&orderCurrency=USDT" +
	"&payOrderId=kpt_2025dummy123456&payTime=1740125635482&reference=my-reference" +
	"&refundCurrency=USDT&requestId=1763124196024&status=USER_PAY_COMPLETED" +
	"&subMerchantId=sub001&timestamp=" + testTimestamp
