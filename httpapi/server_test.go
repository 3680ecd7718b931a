package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kucoinpay/core"
)

type stubService struct {
	calls       []string
	createOrder core.CreateOrderRequest
	listRequest core.ListRequest
	createErr   error
	queryRefund core.QueryRefundRequest
}

func (s *stubService) result(op string) (core.ProviderResult, error) {
	s.calls = append(s.calls, op)
	return core.ProviderResult{
		Code:    "200",
		Success: true,
		Data:    map[string]any{"op": op},
	}, nil
}

func (s *stubService) CreateOrder(_ context.Context, req core.CreateOrderRequest) (core.ProviderResult, error) {
	s.createOrder = req
	if s.createErr != nil {
		s.calls = append(s.calls, "CreateOrder")
		return core.ProviderResult{}, s.createErr
	}
	return s.result("CreateOrder")
}

func (s *stubService) CloseOrder(context.Context, core.CloseOrderRequest) (core.ProviderResult, error) {
	return s.result("CloseOrder")
}

func (s *stubService) CreateRefund(context.Context, core.CreateRefundRequest) (core.ProviderResult, error) {
	return s.result("CreateRefund")
}

func (s *stubService) CreatePayout(context.Context, core.CreatePayoutRequest) (core.ProviderResult, error) {
	return s.result("CreatePayout")
}

func (s *stubService) CreateOnchainOrder(context.Context, core.CreateOnchainOrderRequest) (core.ProviderResult, error) {
	return s.result("CreateOnchainOrder")
}

func (s *stubService) CreateOnchainRefund(context.Context, core.CreateOnchainRefundRequest) (core.ProviderResult, error) {
	return s.result("CreateOnchainRefund")
}

func (s *stubService) QueryOrder(context.Context, core.QueryOrderRequest) (core.ProviderResult, error) {
	return s.result("QueryOrder")
}

func (s *stubService) ListOrders(_ context.Context, req core.ListRequest) (core.ProviderResult, error) {
	s.listRequest = req
	return s.result("ListOrders")
}

func (s *stubService) QueryRefund(_ context.Context, req core.QueryRefundRequest) (core.ProviderResult, error) {
	s.queryRefund = req
	return s.result("QueryRefund")
}

func (s *stubService) ListRefunds(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return s.result("ListRefunds")
}

func (s *stubService) QueryReconciliationReports(context.Context, core.ReportQueryRequest) (core.ProviderResult, error) {
	return s.result("QueryReconciliationReports")
}

func (s *stubService) QueryPayoutInfo(context.Context, core.QueryPayoutInfoRequest) (core.ProviderResult, error) {
	return s.result("QueryPayoutInfo")
}

func (s *stubService) QueryPayoutDetail(context.Context, core.QueryPayoutDetailRequest) (core.ProviderResult, error) {
	return s.result("QueryPayoutDetail")
}

func (s *stubService) QueryOnchainCurrencies(context.Context, core.OnchainCurrencyRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainCurrencies")
}

func (s *stubService) QueryOnchainQuote(context.Context, core.OnchainQuoteRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainQuote")
}

func (s *stubService) QueryOnchainOrder(context.Context, core.QueryOnchainOrderRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainOrder")
}

func (s *stubService) QueryOnchainRefund(context.Context, core.QueryRefundRequest) (core.ProviderResult, error) {
	return s.result("QueryOnchainRefund")
}

func (s *stubService) ListOnchainRefunds(context.Context, core.ListRequest) (core.ProviderResult, error) {
	return s.result("ListOnchainRefunds")
}

type decodedResponse struct {
	Success      bool   `json:"success"`
	Code         string `json:"code"`
	Message      string `json:"msg"`
	ProviderCode string `json:"providerCode"`
	Data         struct {
		Op string `json:"op"`
	} `json:"data"`
	Errors []fieldError `json:"errors"`
}

func post(t *testing.T, handler http.Handler, path string, body string) (*httptest.ResponseRecorder, decodedResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var out decodedResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func TestServer_RoutesEveryOperation(t *testing.T) {
	cases := []struct {
		path string
		body string
		op   string
	}{
		{"/order/create", `{"orderAmount":"10.5","orderCurrency":"USDT"}`, "CreateOrder"},
		{"/order/query", `{"payOrderId":"p-1"}`, "QueryOrder"},
		{"/order/list", `{"startTime":1,"endTime":2}`, "ListOrders"},
		{"/order/close", `{"requestId":"r-1"}`, "CloseOrder"},
		{"/refund", `{"payId":"p-1","refundAmount":"1","requestId":"rf-1"}`, "CreateRefund"},
		{"/refund/query", `{"refundId":"rf-1"}`, "QueryRefund"},
		{"/refund/list", `{"startTime":1,"endTime":2}`, "ListRefunds"},
		{"/report/reconciliation", `{"reportType":"ORDER"}`, "QueryReconciliationReports"},
		{"/payout", `{"requestId":"b-1","withdrawDetailDtoList":[{}]}`, "CreatePayout"},
		{"/payout/info", `{"requestId":"b-1"}`, "QueryPayoutInfo"},
		{"/payout/detail", `{"requestId":"b-1","receiverUID":"u-1"}`, "QueryPayoutDetail"},
		{"/onchain/currency", ``, "QueryOnchainCurrencies"},
		{"/onchain/quote", `{"cryptoCurrency":"USDT","chain":"trx"}`, "QueryOnchainQuote"},
		{"/onchain/order/create", `{"requestId":"o-1","chain":"trx"}`, "CreateOnchainOrder"},
		{"/onchain/order/query", `{"requestId":"o-1"}`, "QueryOnchainOrder"},
		{"/onchain/refund/create", `{"requestId":"or-1","payOrderId":"o-1"}`, "CreateOnchainRefund"},
		{"/onchain/refund/query", `{"requestId":"or-1"}`, "QueryOnchainRefund"},
		{"/onchain/refund/list", `{"startTime":1,"endTime":2}`, "ListOnchainRefunds"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			service := &stubService{}
			server := NewServer(service)
			rec, out := post(t, server, tc.path, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if !out.Success || out.Data.Op != tc.op {
				t.Fatalf("expected success data from %s, got %+v", tc.op, out)
			}
			if len(service.calls) != 1 || service.calls[0] != tc.op {
				t.Fatalf("expected one call to %s, got %v", tc.op, service.calls)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected json content type, got %q", ct)
			}
		})
	}
}

func TestServer_DecodesRequestFields(t *testing.T) {
	service := &stubService{}
	server := NewServer(service)

	post(t, server, "/order/create", `{"requestId":"r-1","orderAmount":"12.34","orderCurrency":"USDT","reference":"ref"}`)
	if service.createOrder.RequestID != "r-1" || service.createOrder.OrderCurrency != "USDT" {
		t.Fatalf("unexpected decoded order request: %+v", service.createOrder)
	}
	if service.createOrder.OrderAmount.String() != "12.34" {
		t.Fatalf("expected amount 12.34, got %s", service.createOrder.OrderAmount.String())
	}

	post(t, server, "/order/list", `{"startTime":100,"endTime":200,"pageNum":2,"pageSize":50}`)
	if service.listRequest.StartTime != 100 || service.listRequest.EndTime != 200 {
		t.Fatalf("unexpected list window: %+v", service.listRequest)
	}
	if service.listRequest.PageNum != 2 || service.listRequest.PageSize != 50 {
		t.Fatalf("unexpected paging: %+v", service.listRequest)
	}
}

func TestServer_ValidationFailureReturnsFieldErrors(t *testing.T) {
	service := &stubService{}
	server := NewServer(service)

	rec, out := post(t, server, "/order/create", `{"orderAmount":"1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if out.Success {
		t.Fatalf("expected failure envelope")
	}
	if out.Code != core.ServiceErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", out.Code)
	}
	if len(out.Errors) != 1 || out.Errors[0].Field != "orderCurrency" {
		t.Fatalf("expected orderCurrency field error, got %+v", out.Errors)
	}
	if len(service.calls) != 0 {
		t.Fatalf("expected service not to be called, got %v", service.calls)
	}
}

func TestServer_MalformedJSON(t *testing.T) {
	server := NewServer(&stubService{})

	rec, out := post(t, server, "/order/query", `{"payOrderId":`)
	if rec.Code != http.StatusBadRequest || out.Code != core.ServiceErrorBadInput {
		t.Fatalf("expected 400 bad input, got %d %+v", rec.Code, out)
	}

	rec, _ = post(t, server, "/order/list", `{"startTime":"soon","endTime":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong field type, got %d", rec.Code)
	}
}

func TestServer_BodyLimit(t *testing.T) {
	server := NewServer(&stubService{}, WithMaxBodyBytes(16))

	rec, out := post(t, server, "/order/query", `{"payOrderId":"a-very-long-identifier"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(out.Message, "too large") {
		t.Fatalf("expected too large message, got %q", out.Message)
	}
}

func TestServer_ProviderFailureKeepsProviderCode(t *testing.T) {
	service := &stubService{
		createErr: goerrors.New("order already exists", goerrors.CategoryExternal).
			WithCode(http.StatusBadGateway).
			WithTextCode(core.ServiceErrorProviderOperationFailed).
			WithMetadata(map[string]any{core.ErrorMetaProviderCode: "400100"}),
	}
	server := NewServer(service)

	rec, out := post(t, server, "/order/create", `{"orderAmount":"1","orderCurrency":"USDT"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if out.Code != core.ServiceErrorProviderOperationFailed {
		t.Fatalf("unexpected text code %q", out.Code)
	}
	if out.ProviderCode != "400100" {
		t.Fatalf("expected provider code 400100, got %q", out.ProviderCode)
	}
	if out.Message != "order already exists" {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestServer_UnknownRouteAndMethod(t *testing.T) {
	server := NewServer(&stubService{})

	rec, out := post(t, server, "/nope", `{}`)
	if rec.Code != http.StatusNotFound || out.Code != core.ServiceErrorNotFound {
		t.Fatalf("expected 404 envelope, got %d %+v", rec.Code, out)
	}

	req := httptest.NewRequest(http.MethodGet, "/order/query", nil)
	getRec := httptest.NewRecorder()
	server.ServeHTTP(getRec, req)
	if getRec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", getRec.Code)
	}
}

func TestServer_MountsWebhookHandler(t *testing.T) {
	var received string
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	server := NewServer(&stubService{}, WithWebhookHandler(webhook))

	req := httptest.NewRequest(http.MethodPost, RouteWebhook, strings.NewReader(`{"type":"ORDER"}`))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("expected webhook ok, got %d %q", rec.Code, rec.Body.String())
	}
	if received != `{"type":"ORDER"}` {
		t.Fatalf("webhook did not receive raw body: %q", received)
	}
}

func TestServer_WithoutWebhookHandlerReturnsNotFound(t *testing.T) {
	server := NewServer(&stubService{})
	rec, _ := post(t, server, RouteWebhook, `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without webhook handler, got %d", rec.Code)
	}
}
