package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-kucoinpay/canonical"
)

type EventType string

const (
	EventTrade          EventType = "TRADE"
	EventRefund         EventType = "REFUND"
	EventPayout         EventType = "PAYOUT"
	EventOnchainPayment EventType = "ONCHAIN_PAYMENT"
	EventOnchainRefund  EventType = "ONCHAIN_REFUND"
)

// Event is one of the five notification variants. The set is closed: the
// unexported method keeps other packages from adding variants, and every
// variant is routed through a Handlers method.
type Event interface {
	Type() EventType
	Accept(ctx context.Context, handlers Handlers) error

	operation() canonical.Operation
	fields() canonical.Fields
}

// Handlers receives decoded events. Adding a variant adds a method here.
type Handlers interface {
	HandleTrade(ctx context.Context, event TradeEvent) error
	HandleRefund(ctx context.Context, event RefundEvent) error
	HandlePayout(ctx context.Context, event PayoutEvent) error
	HandleOnchainPayment(ctx context.Context, event OnchainPaymentEvent) error
	HandleOnchainRefund(ctx context.Context, event OnchainRefundEvent) error
}

type TradeEvent struct {
	OrderType         canonical.Literal `json:"orderType"`
	RequestID         canonical.Literal `json:"requestId"`
	PayOrderID        canonical.Literal `json:"payOrderId"`
	OrderAmount       canonical.Literal `json:"orderAmount"`
	OrderCurrency     canonical.Literal `json:"orderCurrency"`
	Reference         canonical.Literal `json:"reference"`
	RefundCurrency    canonical.Literal `json:"refundCurrency"`
	Status            canonical.Literal `json:"status"`
	SubMerchantID     canonical.Literal `json:"subMerchantId"`
	PayTime           canonical.Literal `json:"payTime"`
	ErrorReason       canonical.Literal `json:"errorReason"`
	CanRefundAmount   canonical.Literal `json:"canRefundAmount"`
	PayerUserID       canonical.Literal `json:"payerUserId"`
	RetrieveKYCStatus canonical.Literal `json:"retrieveKycStatus"`
	// PayerDetail is plaintext once the dispatcher opened it with a codec,
	// otherwise the envelope as received.
	PayerDetail canonical.Literal `json:"payerDetail"`
	Goods       json.RawMessage   `json:"goods,omitempty"`
	// Timestamp is taken from the PAY-API-TIMESTAMP header.
	Timestamp string `json:"-"`
}

func (TradeEvent) Type() EventType { return EventTrade }

func (e TradeEvent) Accept(ctx context.Context, handlers Handlers) error {
	return handlers.HandleTrade(ctx, e)
}

func (TradeEvent) operation() canonical.Operation { return canonical.WebhookTrade }

func (e TradeEvent) fields() canonical.Fields {
	return canonical.Fields{
		"errorReason":    e.ErrorReason,
		"orderAmount":    e.OrderAmount,
		"orderCurrency":  e.OrderCurrency,
		"payOrderId":     e.PayOrderID,
		"payTime":        e.PayTime,
		"reference":      e.Reference,
		"refundCurrency": e.RefundCurrency,
		"requestId":      e.RequestID,
		"status":         e.Status,
		"subMerchantId":  e.SubMerchantID,
	}
}

type RefundEvent struct {
	OrderType               canonical.Literal `json:"orderType"`
	MerchantID              canonical.Literal `json:"merchantId"`
	SubMerchantID           canonical.Literal `json:"subMerchantId"`
	RequestID               canonical.Literal `json:"requestId"`
	RefundID                canonical.Literal `json:"refundId"`
	PayID                   canonical.Literal `json:"payID"`
	RefundAmount            canonical.Literal `json:"refundAmount"`
	RefundCurrency          canonical.Literal `json:"refundCurrency"`
	RefundReason            canonical.Literal `json:"refundReason"`
	Reference               canonical.Literal `json:"reference"`
	RemainingRefundAmount   canonical.Literal `json:"remainingRefundAmount"`
	RemainingRefundCurrency canonical.Literal `json:"remainingRefundCurrency"`
	RefundFinishTime        canonical.Literal `json:"refundFinishTime"`
	Status                  canonical.Literal `json:"status"`
	PayerUserID             canonical.Literal `json:"payerUserId"`
	RetrieveKYCStatus       canonical.Literal `json:"retrieveKycStatus"`
	PayerDetail             canonical.Literal `json:"payerDetail"`
	Timestamp               string            `json:"-"`
}

func (RefundEvent) Type() EventType { return EventRefund }

func (e RefundEvent) Accept(ctx context.Context, handlers Handlers) error {
	return handlers.HandleRefund(ctx, e)
}

func (RefundEvent) operation() canonical.Operation { return canonical.WebhookRefund }

func (e RefundEvent) fields() canonical.Fields {
	return canonical.Fields{
		"merchantId":              e.MerchantID,
		"payID":                   e.PayID,
		"refundAmount":            e.RefundAmount,
		"refundCurrency":          e.RefundCurrency,
		"refundFinishTime":        e.RefundFinishTime,
		"refundId":                e.RefundID,
		"remainingRefundAmount":   e.RemainingRefundAmount,
		"remainingRefundCurrency": e.RemainingRefundCurrency,
		"requestId":               e.RequestID,
		"status":                  e.Status,
		"subMerchantId":           e.SubMerchantID,
	}
}

type PayoutEvent struct {
	OrderType       canonical.Literal   `json:"orderType"`
	RequestID       canonical.Literal   `json:"requestId"`
	BatchNo         canonical.Literal   `json:"batchNo"`
	BatchName       canonical.Literal   `json:"batchName"`
	PayoutType      canonical.Literal   `json:"payoutType"`
	Currency        canonical.Literal   `json:"currency"`
	Chain           canonical.Literal   `json:"chain"`
	TotalAmount     canonical.Literal   `json:"totalAmount"`
	TotalCount      canonical.Literal   `json:"totalCount"`
	TotalPaidAmount canonical.Literal   `json:"totalPaidAmount"`
	ProcessingFee   canonical.Literal   `json:"processingFee"`
	TotalPayoutFee  canonical.Literal   `json:"totalPayoutFee"`
	Status          canonical.Literal   `json:"status"`
	Details         []PayoutDetailEvent `json:"withdrawDetailDtoList,omitempty"`
	Timestamp       string              `json:"-"`
}

type PayoutDetailEvent struct {
	DetailID        canonical.Literal `json:"detailId"`
	ReceiverUID     canonical.Literal `json:"receiverUID"`
	ReceiverAddress canonical.Literal `json:"receiverAddress"`
	Amount          canonical.Literal `json:"amount"`
	Remark          canonical.Literal `json:"remark"`
	Status          canonical.Literal `json:"status"`
	PayoutFee       canonical.Literal `json:"payoutFee"`
}

func (PayoutEvent) Type() EventType { return EventPayout }

func (e PayoutEvent) Accept(ctx context.Context, handlers Handlers) error {
	return handlers.HandlePayout(ctx, e)
}

func (PayoutEvent) operation() canonical.Operation { return canonical.WebhookPayout }

func (e PayoutEvent) fields() canonical.Fields {
	return canonical.Fields{
		"batchNo":         e.BatchNo,
		"chain":           e.Chain,
		"currency":        e.Currency,
		"payoutType":      e.PayoutType,
		"processingFee":   e.ProcessingFee,
		"requestId":       e.RequestID,
		"status":          e.Status,
		"totalAmount":     e.TotalAmount,
		"totalCount":      e.TotalCount,
		"totalPaidAmount": e.TotalPaidAmount,
		"totalPayoutFee":  e.TotalPayoutFee,
	}
}

type OnchainPaymentEvent struct {
	OrderType        canonical.Literal `json:"orderType"`
	RequestID        canonical.Literal `json:"requestId"`
	PayOrderID       canonical.Literal `json:"payOrderId"`
	SubMerchantID    canonical.Literal `json:"subMerchantId"`
	AssetUniqueID    canonical.Literal `json:"assetUniqueId"`
	Chain            canonical.Literal `json:"chain"`
	Currency         canonical.Literal `json:"currency"`
	PaymentAmount    canonical.Literal `json:"paymentAmount"`
	PaymentCurrency  canonical.Literal `json:"paymentCurrency"`
	PaymentOrderType canonical.Literal `json:"paymentOrderType"`
	PaymentStatus    canonical.Literal `json:"paymentStatus"`
	Reference        canonical.Literal `json:"reference"`
	Status           canonical.Literal `json:"status"`
	Timestamp        string            `json:"-"`
}

func (OnchainPaymentEvent) Type() EventType { return EventOnchainPayment }

func (e OnchainPaymentEvent) Accept(ctx context.Context, handlers Handlers) error {
	return handlers.HandleOnchainPayment(ctx, e)
}

func (OnchainPaymentEvent) operation() canonical.Operation {
	return canonical.WebhookOnchainPayment
}

func (e OnchainPaymentEvent) fields() canonical.Fields {
	return canonical.Fields{
		"assetUniqueId":    e.AssetUniqueID,
		"chain":            e.Chain,
		"currency":         e.Currency,
		"paymentAmount":    e.PaymentAmount,
		"paymentCurrency":  e.PaymentCurrency,
		"paymentOrderType": e.PaymentOrderType,
		"paymentStatus":    e.PaymentStatus,
		"payOrderId":       e.PayOrderID,
		"requestId":        e.RequestID,
		"status":           e.Status,
		"subMerchantId":    e.SubMerchantID,
	}
}

type OnchainRefundEvent struct {
	OrderType               canonical.Literal `json:"orderType"`
	RequestID               canonical.Literal `json:"requestId"`
	RefundID                canonical.Literal `json:"refundId"`
	PayOrderID              canonical.Literal `json:"payOrderId"`
	SubMerchantID           canonical.Literal `json:"subMerchantId"`
	AssetUniqueID           canonical.Literal `json:"assetUniqueId"`
	Chain                   canonical.Literal `json:"chain"`
	FeeAmount               canonical.Literal `json:"feeAmount"`
	RefundAmount            canonical.Literal `json:"refundAmount"`
	RefundCurrency          canonical.Literal `json:"refundCurrency"`
	RemainingRefundAmount   canonical.Literal `json:"remainingRefundAmount"`
	RemainingRefundCurrency canonical.Literal `json:"remainingRefundCurrency"`
	RefundReason            canonical.Literal `json:"refundReason"`
	Reference               canonical.Literal `json:"reference"`
	Status                  canonical.Literal `json:"status"`
	Timestamp               string            `json:"-"`
}

func (OnchainRefundEvent) Type() EventType { return EventOnchainRefund }

func (e OnchainRefundEvent) Accept(ctx context.Context, handlers Handlers) error {
	return handlers.HandleOnchainRefund(ctx, e)
}

func (OnchainRefundEvent) operation() canonical.Operation {
	return canonical.WebhookOnchainRefund
}

func (e OnchainRefundEvent) fields() canonical.Fields {
	return canonical.Fields{
		"assetUniqueId":           e.AssetUniqueID,
		"chain":                   e.Chain,
		"feeAmount":               e.FeeAmount,
		"payOrderId":              e.PayOrderID,
		"refundAmount":            e.RefundAmount,
		"refundCurrency":          e.RefundCurrency,
		"refundId":                e.RefundID,
		"remainingRefundAmount":   e.RemainingRefundAmount,
		"remainingRefundCurrency": e.RemainingRefundCurrency,
		"requestId":               e.RequestID,
		"status":                  e.Status,
		"subMerchantId":           e.SubMerchantID,
	}
}

// ErrUnknownEventType is returned by DecodeEvent when orderType is missing
// or names no known variant.
var ErrUnknownEventType = errors.New("webhooks: unknown event type")

// DecodeEvent picks the variant named by orderType and decodes body into it.
// The timestamp is the PAY-API-TIMESTAMP header value.
func DecodeEvent(body []byte, timestamp string) (Event, error) {
	var head struct {
		OrderType canonical.Literal `json:"orderType"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("webhooks: decode payload: %w", err)
	}
	timestamp = strings.TrimSpace(timestamp)
	switch EventType(strings.TrimSpace(head.OrderType.String())) {
	case EventTrade:
		return decodedEvent(TradeEvent{Timestamp: timestamp}, body)
	case EventRefund:
		return decodedEvent(RefundEvent{Timestamp: timestamp}, body)
	case EventPayout:
		return decodedEvent(PayoutEvent{Timestamp: timestamp}, body)
	case EventOnchainPayment:
		return decodedEvent(OnchainPaymentEvent{Timestamp: timestamp}, body)
	case EventOnchainRefund:
		return decodedEvent(OnchainRefundEvent{Timestamp: timestamp}, body)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEventType, head.OrderType.String())
	}
}

func decodedEvent[T Event](event T, body []byte) (Event, error) {
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("webhooks: decode %s payload: %w", event.Type(), err)
	}
	return event, nil
}
