package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/goliatone/go-kucoinpay/canonical"
	"github.com/goliatone/go-kucoinpay/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/shopspring/decimal"
)

// StoreHandlers applies notifications to local records. Each event patches
// only its own entity, with the fields it carries. A nil store skips the
// event, and a notification for a record that was never stored is logged and
// acknowledged.
type StoreHandlers struct {
	Orders        core.OrderStore
	Refunds       core.RefundStore
	Payouts       core.PayoutStore
	OnchainOrders core.OnchainOrderStore
	Logger        core.Logger
}

func NewStoreHandlers(stores core.StoreProvider, logger core.Logger) *StoreHandlers {
	handlers := &StoreHandlers{Logger: glog.Ensure(logger)}
	if stores != nil {
		handlers.Orders = stores.OrderStore()
		handlers.Refunds = stores.RefundStore()
		handlers.Payouts = stores.PayoutStore()
		handlers.OnchainOrders = stores.OnchainOrderStore()
	}
	return handlers
}

func (h *StoreHandlers) HandleTrade(ctx context.Context, event TradeEvent) error {
	if h.Orders == nil {
		return h.skipped(event.Type())
	}
	_, err := h.Orders.UpsertOrder(ctx, core.OrderUpsert{
		Key: core.OrderKey{
			PayOrderID: event.PayOrderID.String(),
			RequestID:  event.RequestID.String(),
		},
		OrderAmount:       decimalOf(event.OrderAmount),
		OrderCurrency:     stringOf(event.OrderCurrency),
		Reference:         stringOf(event.Reference),
		SubMerchantID:     stringOf(event.SubMerchantID),
		Status:            stringOf(event.Status),
		PayTime:           int64Of(event.PayTime),
		CanRefundAmount:   decimalOf(event.CanRefundAmount),
		RefundCurrency:    stringOf(event.RefundCurrency),
		ErrorReason:       stringOf(event.ErrorReason),
		PayerUserID:       stringOf(event.PayerUserID),
		RetrieveKYCStatus: boolOf(event.RetrieveKYCStatus),
		PayerDetail:       stringOf(event.PayerDetail),
		Goods:             rawOf(event.Goods),
	})
	return h.settle(event.Type(), err)
}

func (h *StoreHandlers) HandleRefund(ctx context.Context, event RefundEvent) error {
	if h.Refunds == nil {
		return h.skipped(event.Type())
	}
	status := stringOf(event.Status)
	if status == nil {
		succeeded := core.RefundStatusSucceeded
		status = &succeeded
	}
	_, err := h.Refunds.UpsertRefund(ctx, core.RefundUpsert{
		Key: core.RefundKey{
			RefundID:  event.RefundID.String(),
			RequestID: event.RequestID.String(),
		},
		Kind:                    core.RefundKindTrade,
		PayOrderID:              stringOf(event.PayID),
		MerchantID:              stringOf(event.MerchantID),
		SubMerchantID:           stringOf(event.SubMerchantID),
		RefundAmount:            decimalOf(event.RefundAmount),
		RefundCurrency:          stringOf(event.RefundCurrency),
		RemainingRefundAmount:   decimalOf(event.RemainingRefundAmount),
		RemainingRefundCurrency: stringOf(event.RemainingRefundCurrency),
		RefundReason:            stringOf(event.RefundReason),
		Reference:               stringOf(event.Reference),
		Status:                  status,
		RefundFinishTime:        int64Of(event.RefundFinishTime),
		PayerUserID:             stringOf(event.PayerUserID),
		RetrieveKYCStatus:       boolOf(event.RetrieveKYCStatus),
		PayerDetail:             stringOf(event.PayerDetail),
	})
	return h.settle(event.Type(), err)
}

func (h *StoreHandlers) HandlePayout(ctx context.Context, event PayoutEvent) error {
	if h.Payouts == nil {
		return h.skipped(event.Type())
	}
	details := make([]core.PayoutDetailUpsert, 0, len(event.Details))
	for _, detail := range event.Details {
		if detail.DetailID.IsZero() {
			continue
		}
		details = append(details, core.PayoutDetailUpsert{
			DetailID:        detail.DetailID.String(),
			ReceiverUID:     stringOf(detail.ReceiverUID),
			ReceiverAddress: stringOf(detail.ReceiverAddress),
			Amount:          decimalOf(detail.Amount),
			Remark:          stringOf(detail.Remark),
			Status:          stringOf(detail.Status),
			PayoutFee:       decimalOf(detail.PayoutFee),
		})
	}
	_, err := h.Payouts.UpsertPayout(ctx, core.PayoutUpsert{
		Key: core.PayoutKey{
			RequestID: event.RequestID.String(),
			BatchNo:   event.BatchNo.String(),
		},
		CreateIfMissing: true,
		BatchName:       stringOf(event.BatchName),
		PayoutType:      stringOf(event.PayoutType),
		Currency:        stringOf(event.Currency),
		Chain:           stringOf(event.Chain),
		TotalAmount:     decimalOf(event.TotalAmount),
		TotalCount:      int64Of(event.TotalCount),
		TotalPaidAmount: decimalOf(event.TotalPaidAmount),
		ProcessingFee:   decimalOf(event.ProcessingFee),
		TotalPayoutFee:  decimalOf(event.TotalPayoutFee),
		Status:          stringOf(event.Status),
		Details:         details,
	})
	return h.settle(event.Type(), err)
}

func (h *StoreHandlers) HandleOnchainPayment(ctx context.Context, event OnchainPaymentEvent) error {
	if h.OnchainOrders == nil {
		return h.skipped(event.Type())
	}
	_, err := h.OnchainOrders.UpsertOnchainOrder(ctx, core.OnchainOrderUpsert{
		Key: core.OnchainOrderKey{
			RequestID:  event.RequestID.String(),
			PayOrderID: event.PayOrderID.String(),
		},
		SubMerchantID:   stringOf(event.SubMerchantID),
		CryptoCurrency:  stringOf(event.Currency),
		Chain:           stringOf(event.Chain),
		Reference:       stringOf(event.Reference),
		Status:          stringOf(event.Status),
		PaymentStatus:   stringOf(event.PaymentStatus),
		PaymentAmount:   decimalOf(event.PaymentAmount),
		PaymentCurrency: stringOf(event.PaymentCurrency),
		AssetUniqueID:   stringOf(event.AssetUniqueID),
	})
	return h.settle(event.Type(), err)
}

func (h *StoreHandlers) HandleOnchainRefund(ctx context.Context, event OnchainRefundEvent) error {
	if h.Refunds == nil {
		return h.skipped(event.Type())
	}
	_, err := h.Refunds.UpsertRefund(ctx, core.RefundUpsert{
		Key: core.RefundKey{
			RefundID:  event.RefundID.String(),
			RequestID: event.RequestID.String(),
		},
		Kind:                    core.RefundKindOnchain,
		PayOrderID:              stringOf(event.PayOrderID),
		SubMerchantID:           stringOf(event.SubMerchantID),
		AssetUniqueID:           stringOf(event.AssetUniqueID),
		Chain:                   stringOf(event.Chain),
		FeeAmount:               decimalOf(event.FeeAmount),
		RefundAmount:            decimalOf(event.RefundAmount),
		RefundCurrency:          stringOf(event.RefundCurrency),
		RemainingRefundAmount:   decimalOf(event.RemainingRefundAmount),
		RemainingRefundCurrency: stringOf(event.RemainingRefundCurrency),
		RefundReason:            stringOf(event.RefundReason),
		Reference:               stringOf(event.Reference),
		Status:                  stringOf(event.Status),
	})
	return h.settle(event.Type(), err)
}

func (h *StoreHandlers) settle(eventType EventType, err error) error {
	if errors.Is(err, core.ErrRecordNotFound) {
		glog.Ensure(h.Logger).Info("webhook for unknown local record", "event_type", string(eventType))
		return nil
	}
	return err
}

func (h *StoreHandlers) skipped(eventType EventType) error {
	glog.Ensure(h.Logger).Debug("webhook not persisted, no store configured", "event_type", string(eventType))
	return nil
}

func stringOf(value canonical.Literal) *string {
	return core.StringValue(value.String())
}

func decimalOf(value canonical.Literal) *decimal.Decimal {
	return core.DecimalValue(value.Decimal())
}

func int64Of(value canonical.Literal) *int64 {
	return core.Int64Value(value.Int64())
}

func boolOf(value canonical.Literal) *bool {
	return core.BoolValue(value.Bool())
}

func rawOf(value json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

var _ Handlers = (*StoreHandlers)(nil)
