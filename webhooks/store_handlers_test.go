package webhooks

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-kucoinpay/core"
)

type capturingStores struct {
	orders   []core.OrderUpsert
	refunds  []core.RefundUpsert
	payouts  []core.PayoutUpsert
	onchain  []core.OnchainOrderUpsert
	orderErr error
}

func (s *capturingStores) UpsertOrder(_ context.Context, in core.OrderUpsert) (core.Order, error) {
	s.orders = append(s.orders, in)
	return core.Order{}, s.orderErr
}

func (s *capturingStores) GetOrder(context.Context, core.OrderKey) (core.Order, error) {
	return core.Order{}, core.ErrRecordNotFound
}

func (s *capturingStores) UpsertRefund(_ context.Context, in core.RefundUpsert) (core.Refund, error) {
	s.refunds = append(s.refunds, in)
	return core.Refund{}, nil
}

func (s *capturingStores) GetRefund(context.Context, core.RefundKey) (core.Refund, error) {
	return core.Refund{}, core.ErrRecordNotFound
}

func (s *capturingStores) UpsertPayout(_ context.Context, in core.PayoutUpsert) (core.Payout, error) {
	s.payouts = append(s.payouts, in)
	return core.Payout{}, nil
}

func (s *capturingStores) GetPayout(context.Context, core.PayoutKey) (core.Payout, error) {
	return core.Payout{}, core.ErrRecordNotFound
}

func (s *capturingStores) ListPayoutDetails(context.Context, string) ([]core.PayoutDetail, error) {
	return nil, nil
}

func (s *capturingStores) UpsertOnchainOrder(_ context.Context, in core.OnchainOrderUpsert) (core.OnchainOrder, error) {
	s.onchain = append(s.onchain, in)
	return core.OnchainOrder{}, nil
}

func (s *capturingStores) GetOnchainOrder(context.Context, core.OnchainOrderKey) (core.OnchainOrder, error) {
	return core.OnchainOrder{}, core.ErrRecordNotFound
}

func (s *capturingStores) OrderStore() core.OrderStore               { return s }
func (s *capturingStores) RefundStore() core.RefundStore             { return s }
func (s *capturingStores) PayoutStore() core.PayoutStore             { return s }
func (s *capturingStores) OnchainOrderStore() core.OnchainOrderStore { return s }
func (s *capturingStores) ReportStore() core.ReportStore             { return nil }

func TestStoreHandlers_TradePatchesOrderByProviderID(t *testing.T) {
	stores := &capturingStores{}
	handlers := NewStoreHandlers(stores, nil)
	dispatcher := NewDispatcher(testAPIKey, testVerifier(t), handlers)

	if result := dispatcher.Dispatch(context.Background(), signedRequest(t, tradeBody, tradeCanonical)); result.Outcome != OutcomeAcknowledged {
		t.Fatalf("expected acknowledged, got %q", result.Outcome)
	}
	if len(stores.orders) != 1 || len(stores.refunds) != 0 || len(stores.payouts) != 0 || len(stores.onchain) != 0 {
		t.Fatalf("expected a single order upsert, got %d/%d/%d/%d",
			len(stores.orders), len(stores.refunds), len(stores.payouts), len(stores.onchain))
	}
	in := stores.orders[0]
	if in.Key.PayOrderID != "kpt_2025dummy123456" || in.Key.RequestID != "1763124196024" {
		t.Fatalf("unexpected key %#v", in.Key)
	}
	if in.CreateIfMissing {
		t.Fatalf("expected trade events to patch existing orders only")
	}
	if in.Status == nil || *in.Status != core.OrderStatusUserPayCompleted {
		t.Fatalf("unexpected status %v", in.Status)
	}
	if in.PayTime == nil || *in.PayTime != 1740125635482 {
		t.Fatalf("unexpected pay time %v", in.PayTime)
	}
	if in.OrderAmount == nil || in.OrderAmount.String() != "20" {
		t.Fatalf("unexpected amount %v", in.OrderAmount)
	}
	if in.CanRefundAmount == nil || in.CanRefundAmount.String() != "20" {
		t.Fatalf("unexpected refundable amount %v", in.CanRefundAmount)
	}
	if in.RetrieveKYCStatus == nil || !*in.RetrieveKYCStatus {
		t.Fatalf("expected kyc flag, got %v", in.RetrieveKYCStatus)
	}
	if in.ErrorReason != nil || in.PayerDetail != nil {
		t.Fatalf("expected absent fields to stay nil, got %v %v", in.ErrorReason, in.PayerDetail)
	}
	if len(in.Goods) == 0 {
		t.Fatalf("expected goods to be patched")
	}
}

func TestStoreHandlers_RefundDefaultsToSucceeded(t *testing.T) {
	stores := &capturingStores{}
	err := NewStoreHandlers(stores, nil).HandleRefund(context.Background(), RefundEvent{
		RefundID:     "R1",
		RequestID:    "rf-1",
		PayID:        "P1",
		RefundAmount: "5.50",
	})
	if err != nil {
		t.Fatalf("handle refund: %v", err)
	}
	in := stores.refunds[0]
	if in.Kind != core.RefundKindTrade || in.Status == nil || *in.Status != core.RefundStatusSucceeded {
		t.Fatalf("unexpected refund upsert %#v", in)
	}
	if in.PayOrderID == nil || *in.PayOrderID != "P1" || in.RefundAmount.String() != "5.5" {
		t.Fatalf("unexpected refund fields %#v", in)
	}
}

func TestStoreHandlers_PayoutInsertsWithDetails(t *testing.T) {
	stores := &capturingStores{}
	err := NewStoreHandlers(stores, nil).HandlePayout(context.Background(), PayoutEvent{
		RequestID:  "po-1",
		BatchNo:    "B1",
		TotalCount: "2",
		Status:     "SUCCEEDED",
		Details: []PayoutDetailEvent{
			{DetailID: "d1", Amount: "1", Status: "SUCCEEDED", PayoutFee: "0.1"},
			{Amount: "2"},
		},
	})
	if err != nil {
		t.Fatalf("handle payout: %v", err)
	}
	in := stores.payouts[0]
	if !in.CreateIfMissing || in.Key.RequestID != "po-1" || in.Key.BatchNo != "B1" {
		t.Fatalf("unexpected payout upsert %#v", in)
	}
	if in.TotalCount == nil || *in.TotalCount != 2 {
		t.Fatalf("unexpected total count %v", in.TotalCount)
	}
	if len(in.Details) != 1 || in.Details[0].DetailID != "d1" || in.Details[0].PayoutFee.String() != "0.1" {
		t.Fatalf("expected details without id to be skipped, got %#v", in.Details)
	}
}

func TestStoreHandlers_OnchainEvents(t *testing.T) {
	stores := &capturingStores{}
	handlers := NewStoreHandlers(stores, nil)
	if err := handlers.HandleOnchainPayment(context.Background(), OnchainPaymentEvent{
		RequestID:     "oc-1",
		Currency:      "USDT",
		PaymentAmount: "10",
		PaymentStatus: "PAID",
	}); err != nil {
		t.Fatalf("handle onchain payment: %v", err)
	}
	if in := stores.onchain[0]; in.CryptoCurrency == nil || *in.CryptoCurrency != "USDT" || in.Key.RequestID != "oc-1" {
		t.Fatalf("unexpected onchain upsert %#v", in)
	}
	if err := handlers.HandleOnchainRefund(context.Background(), OnchainRefundEvent{
		RefundID:  "OR1",
		FeeAmount: "0.2",
		Chain:     "TRON",
	}); err != nil {
		t.Fatalf("handle onchain refund: %v", err)
	}
	if in := stores.refunds[0]; in.Kind != core.RefundKindOnchain || in.FeeAmount.String() != "0.2" {
		t.Fatalf("unexpected onchain refund upsert %#v", in)
	}
}

func TestStoreHandlers_MissingRecordIsAcknowledged(t *testing.T) {
	stores := &capturingStores{orderErr: core.ErrRecordNotFound}
	if err := NewStoreHandlers(stores, nil).HandleTrade(context.Background(), TradeEvent{PayOrderID: "P404"}); err != nil {
		t.Fatalf("expected not found to be tolerated, got %v", err)
	}
	stores.orderErr = errors.New("disk full")
	if err := NewStoreHandlers(stores, nil).HandleTrade(context.Background(), TradeEvent{PayOrderID: "P1"}); err == nil {
		t.Fatalf("expected store failure to surface")
	}
}

func TestStoreHandlers_NilStoresSkip(t *testing.T) {
	handlers := NewStoreHandlers(nil, nil)
	if err := handlers.HandleTrade(context.Background(), TradeEvent{}); err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
	if err := handlers.HandlePayout(context.Background(), PayoutEvent{}); err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
}
