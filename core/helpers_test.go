package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

const testAPIKey = "test-api-key"

type stubLoggerProvider struct {
	logger Logger
}

func (p stubLoggerProvider) GetLogger(string) Logger {
	return p.logger
}

type recordingSigner struct {
	mu        sync.Mutex
	canonical []string
	err       error
}

func (s *recordingSigner) Sign(canonical string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.canonical = append(s.canonical, canonical)
	return "sig-" + canonical, nil
}

func (s *recordingSigner) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.canonical) == 0 {
		return ""
	}
	return s.canonical[len(s.canonical)-1]
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

type scriptedTransport struct {
	mu        sync.Mutex
	responses map[string]scriptedResponse
	requests  []TransportRequest
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{responses: map[string]scriptedResponse{}}
}

func (t *scriptedTransport) reply(path string, status int, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses[path] = scriptedResponse{status: status, body: body}
}

func (t *scriptedTransport) fail(path string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses[path] = scriptedResponse{err: err}
}

func (t *scriptedTransport) Kind() string { return "scripted" }

func (t *scriptedTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	for path, response := range t.responses {
		if !strings.HasSuffix(req.URL, path) {
			continue
		}
		if response.err != nil {
			return TransportResponse{}, response.err
		}
		return TransportResponse{StatusCode: response.status, Body: []byte(response.body)}, nil
	}
	return TransportResponse{StatusCode: 200, Body: []byte(`{"code":"200","success":true,"data":{}}`)}, nil
}

func (t *scriptedTransport) lastRequest() TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return TransportRequest{}
	}
	return t.requests[len(t.requests)-1]
}

func (t *scriptedTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

type recordingStores struct {
	mu            sync.Mutex
	err           error
	orders        []OrderUpsert
	refunds       []RefundUpsert
	payouts       []PayoutUpsert
	onchainOrders []OnchainOrderUpsert
	reports       []ReportUpsert
}

func (s *recordingStores) OrderStore() OrderStore               { return s }
func (s *recordingStores) RefundStore() RefundStore             { return s }
func (s *recordingStores) PayoutStore() PayoutStore             { return s }
func (s *recordingStores) OnchainOrderStore() OnchainOrderStore { return s }
func (s *recordingStores) ReportStore() ReportStore             { return s }

func (s *recordingStores) UpsertOrder(_ context.Context, in OrderUpsert) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Order{}, s.err
	}
	s.orders = append(s.orders, in)
	return Order{RequestID: in.Key.RequestID, PayOrderID: in.Key.PayOrderID}, nil
}

func (s *recordingStores) GetOrder(context.Context, OrderKey) (Order, error) {
	return Order{}, ErrRecordNotFound
}

func (s *recordingStores) UpsertRefund(_ context.Context, in RefundUpsert) (Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Refund{}, s.err
	}
	s.refunds = append(s.refunds, in)
	return Refund{RefundID: in.Key.RefundID, RequestID: in.Key.RequestID, Kind: in.Kind}, nil
}

func (s *recordingStores) GetRefund(context.Context, RefundKey) (Refund, error) {
	return Refund{}, ErrRecordNotFound
}

func (s *recordingStores) UpsertPayout(_ context.Context, in PayoutUpsert) (Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Payout{}, s.err
	}
	s.payouts = append(s.payouts, in)
	return Payout{RequestID: in.Key.RequestID, BatchNo: in.Key.BatchNo}, nil
}

func (s *recordingStores) GetPayout(context.Context, PayoutKey) (Payout, error) {
	return Payout{}, ErrRecordNotFound
}

func (s *recordingStores) ListPayoutDetails(context.Context, string) ([]PayoutDetail, error) {
	return nil, nil
}

func (s *recordingStores) UpsertOnchainOrder(_ context.Context, in OnchainOrderUpsert) (OnchainOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return OnchainOrder{}, s.err
	}
	s.onchainOrders = append(s.onchainOrders, in)
	return OnchainOrder{RequestID: in.Key.RequestID, PayOrderID: in.Key.PayOrderID}, nil
}

func (s *recordingStores) GetOnchainOrder(context.Context, OnchainOrderKey) (OnchainOrder, error) {
	return OnchainOrder{}, ErrRecordNotFound
}

func (s *recordingStores) UpsertReport(_ context.Context, in ReportUpsert) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Report{}, s.err
	}
	s.reports = append(s.reports, in)
	return Report{ReportType: in.ReportType, ReportDate: in.ReportDate}, nil
}

func (s *recordingStores) ListReports(context.Context, string, string, string) ([]Report, error) {
	return nil, nil
}

var errStoreDown = errors.New("store down")

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Provider.BaseURL = "https://pay.test"
	cfg.Provider.APIKey = testAPIKey
	return cfg
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func newTestService(t *testing.T, transport TransportAdapter, signer RequestSigner, opts ...Option) *Service {
	t.Helper()
	logger := newCaptureLogger()
	base := []Option{
		WithTransport(transport),
		WithSigner(signer),
		WithClock(fixedClock),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	}
	svc, err := NewService(testConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}
