package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	kucoincommand "github.com/goliatone/go-kucoinpay/command"
	"github.com/goliatone/go-kucoinpay/core"
	kucoinquery "github.com/goliatone/go-kucoinpay/query"
	"github.com/shopspring/decimal"
)

type okMessage struct{}

func (okMessage) Type() string { return "kucoinpay.command.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "kucoinpay.command.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "kucoinpay.command.test" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	sub, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

type merchantStub struct {
	closed  []string
	queried []string
}

func (s *merchantStub) result(op string) (core.ProviderResult, error) {
	return core.ProviderResult{Success: true, Data: core.ProviderData{"op": op}}, nil
}

func (s *merchantStub) CreateOrder(context.Context, core.CreateOrderRequest) (core.ProviderResult, error) {
	return s.result("CreateOrder")
}

func (s *merchantStub) CloseOrder(_ context.Context, req core.CloseOrderRequest) (core.ProviderResult, error) {
	s.closed = append(s.closed, req.RequestID)
	return s.result("CloseOrder")
}

func (s *merchantStub) CreateRefund(context.Context, core.CreateRefundRequest) (core.ProviderResult, error) {
	return s.result("CreateRefund")
}

func (s *merchantStub) CreatePayout(context.Context, core.CreatePayoutRequest) (core.ProviderResult, error) {
	return s.result("CreatePayout")
}

func (s *merchantStub) CreateOnchainOrder(context.Context, core.CreateOnchainOrderRequest) (core.ProviderResult, error) {
	return s.result("CreateOnchainOrder")
}

func (s *merchantStub) CreateOnchainRefund(context.Context, core.CreateOnchainRefundRequest) (core.ProviderResult, error) {
	return s.result("CreateOnchainRefund")
}

func (s *merchantStub) QueryOrder(_ context.Context, req core.QueryOrderRequest) (core.ProviderResult, error) {
	s.queried = append(s.queried, req.PayOrderID)
	return s.result("QueryOrder")
}

func (s *merchantStub) ListOrders(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return s.result("ListOrders")
}

func (s *merchantStub) QueryRefund(context.Context, core.QueryRefundRequest) (core.ProviderResult, error) {
	return s.result("QueryRefund")
}

func (s *merchantStub) ListRefunds(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return s.result("ListRefunds")
}

func (s *merchantStub) QueryReconciliationReports(context.Context, core.ReportQueryRequest) (core.ProviderResult, error) {
	return s.result("QueryReconciliationReports")
}

func (s *merchantStub) QueryPayoutInfo(context.Context, core.QueryPayoutInfoRequest) (core.ProviderResult, error) {
	return s.result("QueryPayoutInfo")
}

func (s *merchantStub) QueryPayoutDetail(context.Context, core.QueryPayoutDetailRequest) (core.ProviderResult, error) {
	return s.result("QueryPayoutDetail")
}

func (s *merchantStub) QueryOnchainCurrencies(context.Context, core.OnchainCurrencyRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainCurrencies")
}

func (s *merchantStub) QueryOnchainQuote(context.Context, core.OnchainQuoteRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainQuote")
}

func (s *merchantStub) QueryOnchainOrder(context.Context, core.QueryOnchainOrderRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainOrder")
}

func (s *merchantStub) QueryOnchainRefund(context.Context, core.QueryRefundRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainRefund")
}

func (s *merchantStub) ListOnchainRefunds(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return s.result("ListOnchainRefunds")
}

func TestRegisterMerchantHandlers_DispatchesCommandsAndQueries(t *testing.T) {
	svc := &merchantStub{}
	adapter := NewRegistryAdapter(command.NewRegistry())

	subs, err := RegisterMerchantHandlers(adapter, svc)
	if err != nil {
		t.Fatalf("register merchant handlers: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 18 {
		t.Fatalf("expected 18 subscriptions, got %d", len(subs))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	collector := command.NewResult[core.ProviderResult]()
	ctx := command.ContextWithResult(context.Background(), collector)
	if err := Dispatch(ctx, kucoincommand.CloseOrderMessage{
		Request: core.CloseOrderRequest{RequestID: "req_1"},
	}); err != nil {
		t.Fatalf("dispatch close order: %v", err)
	}
	if len(svc.closed) != 1 || svc.closed[0] != "req_1" {
		t.Fatalf("expected close order delegation, got %v", svc.closed)
	}
	if result, ok := collector.Load(); !ok || result.Object().String("op") != "CloseOrder" {
		t.Fatalf("expected close order result in collector, got %#v", result)
	}

	result, err := Query[kucoinquery.QueryOrderMessage, core.ProviderResult](context.Background(), kucoinquery.QueryOrderMessage{
		Request: core.QueryOrderRequest{PayOrderID: "pay_1"},
	})
	if err != nil {
		t.Fatalf("query order: %v", err)
	}
	if len(svc.queried) != 1 || svc.queried[0] != "pay_1" {
		t.Fatalf("expected query delegation, got %v", svc.queried)
	}
	if result.Object().String("op") != "QueryOrder" {
		t.Fatalf("unexpected query result %#v", result)
	}
}

func TestValidateMessageContract_MerchantMessages(t *testing.T) {
	if err := ValidateMessageContract(kucoincommand.CreateOrderMessage{
		Request: core.CreateOrderRequest{OrderAmount: decimal.NewFromInt(1)},
	}); err == nil {
		t.Fatalf("expected validation error for missing currency")
	}
	if err := ValidateMessageContract(kucoinquery.QueryOrderMessage{
		Request: core.QueryOrderRequest{RequestID: "req_1"},
	}); err != nil {
		t.Fatalf("expected query message to pass, got %v", err)
	}
}

func TestRegisterMerchantHandlers_RequiresService(t *testing.T) {
	if _, err := RegisterMerchantHandlers(NewRegistryAdapter(nil), nil); err == nil {
		t.Fatalf("expected nil service error")
	}
}
