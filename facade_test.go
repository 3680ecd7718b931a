package kucoinpay

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	kucoincommand "github.com/goliatone/go-kucoinpay/command"
	"github.com/goliatone/go-kucoinpay/core"
	kucoinquery "github.com/goliatone/go-kucoinpay/query"
)

type stubFacadeService struct {
	lastCloseRequestID string
	lastQueryOrder     core.QueryOrderRequest
	orders             core.OrderStore
	reports            core.ReportStore
}

func stubResult(op string) (core.ProviderResult, error) {
	return core.ProviderResult{Success: true, Data: map[string]any{"op": op}}, nil
}

func (s *stubFacadeService) Dependencies() core.ServiceDependencies {
	return core.ServiceDependencies{OrderStore: s.orders, ReportStore: s.reports}
}

func (s *stubFacadeService) CreateOrder(context.Context, core.CreateOrderRequest) (core.ProviderResult, error) {
	return stubResult("CreateOrder")
}

func (s *stubFacadeService) CloseOrder(_ context.Context, req core.CloseOrderRequest) (core.ProviderResult, error) {
	s.lastCloseRequestID = req.RequestID
	return stubResult("CloseOrder")
}

func (s *stubFacadeService) CreateRefund(context.Context, core.CreateRefundRequest) (core.ProviderResult, error) {
	return stubResult("CreateRefund")
}

func (s *stubFacadeService) CreatePayout(context.Context, core.CreatePayoutRequest) (core.ProviderResult, error) {
	return stubResult("CreatePayout")
}

func (s *stubFacadeService) CreateOnchainOrder(context.Context, core.CreateOnchainOrderRequest) (core.ProviderResult, error) {
	return stubResult("CreateOnchainOrder")
}

func (s *stubFacadeService) CreateOnchainRefund(context.Context, core.CreateOnchainRefundRequest) (core.ProviderResult, error) {
	return stubResult("CreateOnchainRefund")
}

func (s *stubFacadeService) QueryOrder(_ context.Context, req core.QueryOrderRequest) (core.ProviderResult, error) {
	s.lastQueryOrder = req
	return stubResult("QueryOrder")
}

func (s *stubFacadeService) ListOrders(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return stubResult("ListOrders")
}

func (s *stubFacadeService) QueryRefund(context.Context, core.QueryRefundRequest) (core.ProviderResult, error) {
	return stubResult("QueryRefund")
}

func (s *stubFacadeService) ListRefunds(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return stubResult("ListRefunds")
}

func (s *stubFacadeService) QueryReconciliationReports(context.Context, core.ReportQueryRequest) (core.ProviderResult, error) {
	return stubResult("QueryReconciliationReports")
}

func (s *stubFacadeService) QueryPayoutInfo(context.Context, core.QueryPayoutInfoRequest) (core.ProviderResult, error) {
	return stubResult("QueryPayoutInfo")
}

func (s *stubFacadeService) QueryPayoutDetail(context.Context, core.QueryPayoutDetailRequest) (core.ProviderResult, error) {
	return stubResult("QueryPayoutDetail")
}

func (s *stubFacadeService) QueryOnchainCurrencies(context.Context, core.OnchainCurrencyRequest) (core.ProviderResult, error) {
	return stubResult("QueryOnchainCurrencies")
}

func (s *stubFacadeService) QueryOnchainQuote(context.Context, core.OnchainQuoteRequest) (core.ProviderResult, error) {
	return stubResult("QueryOnchainQuote")
}

func (s *stubFacadeService) QueryOnchainOrder(context.Context, core.QueryOnchainOrderRequest) (core.ProviderResult, error) {
	return stubResult("QueryOnchainOrder")
}

func (s *stubFacadeService) QueryOnchainRefund(context.Context, core.QueryRefundRequest) (core.ProviderResult, error) {
	return stubResult("QueryOnchainRefund")
}

func (s *stubFacadeService) ListOnchainRefunds(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return stubResult("ListOnchainRefunds")
}

type stubFacadeOrderStore struct {
	order core.Order
}

func (s stubFacadeOrderStore) UpsertOrder(context.Context, core.OrderUpsert) (core.Order, error) {
	return s.order, nil
}

func (s stubFacadeOrderStore) GetOrder(context.Context, core.OrderKey) (core.Order, error) {
	return s.order, nil
}

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	facade, err := NewFacade(&stubFacadeService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.CreateOrder == nil || commands.CloseOrder == nil || commands.CreateOnchainRefund == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.QueryOrder == nil || queries.ListOnchainRefunds == nil || queries.QueryOnchainCurrencies == nil {
		t.Fatalf("expected query handlers to be wired")
	}
	if queries.GetStoredOrder != nil || queries.ListStoredReports != nil {
		t.Fatalf("expected stored reads to stay nil without stores")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.ProviderResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().CloseOrder.Execute(ctx, kucoincommand.CloseOrderMessage{
		Request: core.CloseOrderRequest{RequestID: "req_1"},
	}); err != nil {
		t.Fatalf("execute close order: %v", err)
	}
	if svc.lastCloseRequestID != "req_1" {
		t.Fatalf("unexpected close order delegation: %q", svc.lastCloseRequestID)
	}
	if result, stored := collector.Load(); !stored || !result.Success {
		t.Fatalf("expected close order result in collector, got %#v", result)
	}

	result, err := facade.Queries().QueryOrder.Query(context.Background(), kucoinquery.QueryOrderMessage{
		Request: core.QueryOrderRequest{PayOrderID: "pay_1"},
	})
	if err != nil {
		t.Fatalf("query order: %v", err)
	}
	if svc.lastQueryOrder.PayOrderID != "pay_1" || !result.Success {
		t.Fatalf("unexpected query delegation: %#v %#v", svc.lastQueryOrder, result)
	}
}

func TestNewFacade_ResolvesStoredReadersFromDependencies(t *testing.T) {
	svc := &stubFacadeService{
		orders: stubFacadeOrderStore{order: core.Order{ID: "ord_1", RequestID: "req_1"}},
	}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	queries := facade.Queries()
	if queries.GetStoredOrder == nil {
		t.Fatalf("expected stored order query from service dependencies")
	}
	if queries.ListStoredReports != nil {
		t.Fatalf("expected no stored reports query without a report store")
	}

	order, err := queries.GetStoredOrder.Query(context.Background(), kucoinquery.GetStoredOrderMessage{
		Key: core.OrderKey{RequestID: "req_1"},
	})
	if err != nil {
		t.Fatalf("get stored order: %v", err)
	}
	if order.ID != "ord_1" {
		t.Fatalf("unexpected stored order %#v", order)
	}
}

func TestNewFacade_StoredReadersOptionWins(t *testing.T) {
	svc := &stubFacadeService{orders: stubFacadeOrderStore{order: core.Order{ID: "from_deps"}}}
	facade, err := NewFacade(svc, WithStoredReaders(stubFacadeOrderStore{order: core.Order{ID: "from_option"}}, nil))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	order, err := facade.Queries().GetStoredOrder.Query(context.Background(), kucoinquery.GetStoredOrderMessage{
		Key: core.OrderKey{PayOrderID: "pay_1"},
	})
	if err != nil {
		t.Fatalf("get stored order: %v", err)
	}
	if order.ID != "from_option" {
		t.Fatalf("expected option store to win, got %q", order.ID)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}
