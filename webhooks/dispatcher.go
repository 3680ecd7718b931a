package webhooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
	"github.com/goliatone/go-kucoinpay/core"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	OutcomeAcknowledged     = "acknowledged"
	OutcomeDeduped          = "deduped"
	OutcomeUnknownEventType = "unknown_event_type"
	OutcomeMalformedPayload = "malformed_payload"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeHandlerFailed    = "handler_failed"
	OutcomeLedgerFailed     = "ledger_failed"
)

// Response bodies the counterparty sees.
const (
	BodyOK               = "ok"
	BodyInvalidSignature = "invalid signature"
	BodyUnknownEventType = "unknown event type"
	BodyError            = "error"
)

const defaultMaxBodyBytes int64 = 1 << 20

const metricDeliveries = "kucoinpay.webhook.deliveries"
const metricDurationMS = "kucoinpay.webhook.duration_ms"

type Request struct {
	Headers map[string]string
	Body    []byte
}

type Result struct {
	StatusCode  int
	Body        string
	Outcome     string
	EventType   EventType
	DeliveryKey string
	Event       Event
}

// Dispatcher verifies, classifies and routes provider notifications. A nil
// Ledger disables dedupe; a nil Codec leaves payerDetail as received.
type Dispatcher struct {
	APIKey       string
	Verifier     core.SignatureVerifier
	Codec        core.FieldCodec
	Ledger       DeliveryLedger
	Handlers     Handlers
	Logger       core.Logger
	Metrics      core.MetricsRecorder
	MaxBodyBytes int64
	Now          func() time.Time
}

type DispatcherOption func(*Dispatcher)

func WithCodec(codec core.FieldCodec) DispatcherOption {
	return func(d *Dispatcher) {
		d.Codec = codec
	}
}

func WithLedger(ledger DeliveryLedger) DispatcherOption {
	return func(d *Dispatcher) {
		d.Ledger = ledger
	}
}

func WithLogger(logger core.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.Logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		if metrics != nil {
			d.Metrics = metrics
		}
	}
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.Now = now
		}
	}
}

func NewDispatcher(
	apiKey string,
	verifier core.SignatureVerifier,
	handlers Handlers,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		APIKey:       strings.TrimSpace(apiKey),
		Verifier:     verifier,
		Handlers:     handlers,
		Logger:       glog.Nop(),
		Metrics:      core.NopMetricsRecorder{},
		MaxBodyBytes: defaultMaxBodyBytes,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dispatch runs one notification through decode, verification, dedupe and
// the matching handler. A missing or unknown orderType is rejected with 422
// before verification because no canonical field order exists for it; the
// delivery ends rejected exactly as a failed verification would, and no
// handler or ledger entry is touched.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := d.now()
	result := d.dispatch(ctx, req)
	tags := map[string]string{
		"event_type": string(result.EventType),
		"outcome":    result.Outcome,
	}
	d.metrics().IncCounter(ctx, metricDeliveries, 1, tags)
	d.metrics().ObserveHistogram(ctx, metricDurationMS, float64(d.now().Sub(startedAt).Milliseconds()), tags)
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Result {
	logger := glog.Ensure(d.Logger)
	if d.Handlers == nil {
		logger.Error("webhook dispatcher has no handlers")
		return reject(http.StatusInternalServerError, BodyError, OutcomeHandlerFailed, "")
	}

	timestamp := headerValue(req.Headers, core.HeaderTimestamp)
	signature := headerValue(req.Headers, core.HeaderSign)
	version := headerValue(req.Headers, core.HeaderVersion)

	event, err := DecodeEvent(req.Body, timestamp)
	if err != nil {
		if errors.Is(err, ErrUnknownEventType) {
			logger.Warn("webhook rejected: unknown event type", "error", err.Error())
			return reject(http.StatusUnprocessableEntity, BodyUnknownEventType, OutcomeUnknownEventType, "")
		}
		logger.Warn("webhook rejected: malformed payload", "error", err.Error())
		return reject(http.StatusBadRequest, BodyInvalidSignature, OutcomeMalformedPayload, "")
	}
	eventType := event.Type()

	fields := event.fields()
	fields["apiKey"] = d.APIKey
	fields["timestamp"] = timestamp
	message, err := canonical.Build(event.operation(), fields)
	if err != nil || d.Verifier == nil || !d.Verifier.Verify(message, signature) {
		logger.Warn("webhook rejected: invalid signature",
			"event_type", string(eventType),
			"timestamp", timestamp,
			"api_version", version,
			"signature", signaturePrefix(signature),
		)
		return reject(http.StatusBadRequest, BodyInvalidSignature, OutcomeInvalidSignature, eventType)
	}

	event = d.openPayerDetail(event, logger)
	deliveryKey := DeliveryKey(eventType, timestamp, signature)

	if d.Ledger != nil {
		_, processed, err := d.Ledger.Reserve(ctx, string(eventType), deliveryKey, req.Body)
		if err != nil {
			logger.Error("webhook delivery reservation failed",
				"event_type", string(eventType),
				"delivery_key", deliveryKey,
				"error", err.Error(),
			)
			return reject(http.StatusInternalServerError, BodyError, OutcomeLedgerFailed, eventType)
		}
		if processed {
			logger.Info("webhook deduped", "event_type", string(eventType), "delivery_key", deliveryKey)
			return Result{
				StatusCode:  http.StatusOK,
				Body:        BodyOK,
				Outcome:     OutcomeDeduped,
				EventType:   eventType,
				DeliveryKey: deliveryKey,
				Event:       event,
			}
		}
	}

	if err := event.Accept(ctx, d.Handlers); err != nil {
		logger.Error("webhook handler failed",
			"event_type", string(eventType),
			"delivery_key", deliveryKey,
			"error", err.Error(),
		)
		if d.Ledger != nil {
			if markErr := d.Ledger.MarkFailed(ctx, string(eventType), deliveryKey, err); markErr != nil {
				logger.Warn("webhook delivery mark failed", "delivery_key", deliveryKey, "error", markErr.Error())
			}
		}
		result := reject(http.StatusInternalServerError, BodyError, OutcomeHandlerFailed, eventType)
		result.DeliveryKey = deliveryKey
		result.Event = event
		return result
	}

	if d.Ledger != nil {
		if err := d.Ledger.MarkProcessed(ctx, string(eventType), deliveryKey); err != nil {
			// Handlers already ran; a redelivery converges through the upserts.
			logger.Warn("webhook delivery mark processed failed", "delivery_key", deliveryKey, "error", err.Error())
		}
	}
	logger.Info("webhook acknowledged", "event_type", string(eventType), "delivery_key", deliveryKey)
	return Result{
		StatusCode:  http.StatusOK,
		Body:        BodyOK,
		Outcome:     OutcomeAcknowledged,
		EventType:   eventType,
		DeliveryKey: deliveryKey,
		Event:       event,
	}
}

// ServeHTTP answers with the bare text body the counterparty expects.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusMethodNotAllowed, BodyError)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, d.maxBodyBytes()+1))
	if err != nil || int64(len(body)) > d.maxBodyBytes() {
		glog.Ensure(d.Logger).Warn("webhook body unreadable or too large")
		writeText(w, http.StatusBadRequest, BodyError)
		return
	}
	headers := make(map[string]string, len(r.Header))
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}
	result := d.Dispatch(r.Context(), Request{Headers: headers, Body: body})
	writeText(w, result.StatusCode, result.Body)
}

// DeliveryKey identifies a notification for dedupe.
func DeliveryKey(eventType EventType, timestamp string, signature string) string {
	sum := sha256.Sum256([]byte(string(eventType) + "\n" + timestamp + "\n" + signature))
	return hex.EncodeToString(sum[:])
}

func (d *Dispatcher) openPayerDetail(event Event, logger core.Logger) Event {
	if d.Codec == nil {
		return event
	}
	open := func(envelope canonical.Literal) canonical.Literal {
		if envelope.IsZero() {
			return envelope
		}
		plaintext, err := d.Codec.Decrypt(envelope.String())
		if err != nil {
			logger.Warn("webhook payer detail unavailable",
				"event_type", string(event.Type()),
				"error", err.Error(),
			)
			return ""
		}
		return canonical.Literal(plaintext)
	}
	switch typed := event.(type) {
	case TradeEvent:
		typed.PayerDetail = open(typed.PayerDetail)
		return typed
	case RefundEvent:
		typed.PayerDetail = open(typed.PayerDetail)
		return typed
	}
	return event
}

func (d *Dispatcher) now() time.Time {
	if d != nil && d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *Dispatcher) metrics() core.MetricsRecorder {
	if d != nil && d.Metrics != nil {
		return d.Metrics
	}
	return core.NopMetricsRecorder{}
}

func (d *Dispatcher) maxBodyBytes() int64 {
	if d != nil && d.MaxBodyBytes > 0 {
		return d.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}

func reject(status int, body string, outcome string, eventType EventType) Result {
	return Result{StatusCode: status, Body: body, Outcome: outcome, EventType: eventType}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func signaturePrefix(signature string) string {
	const keep = 8
	if len(signature) <= keep {
		return signature
	}
	return signature[:keep] + "..."
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

var _ http.Handler = (*Dispatcher)(nil)
