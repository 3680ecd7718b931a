// Package httpapi exposes the merchant operations and the webhook receiver
// over HTTP. Every route accepts POST with a JSON body and answers with
// {"success": true, "data": ...} or an error envelope.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kucoinpay/command"
	"github.com/goliatone/go-kucoinpay/core"
	"github.com/goliatone/go-kucoinpay/query"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/gorilla/mux"
)

const (
	defaultMaxBodyBytes = 1 << 20

	RouteWebhook = "/kucoin/webhook"
)

// Service is satisfied by *core.Service.
type Service interface {
	command.MutatingService
	query.ProviderReader
}

type Server struct {
	router       *mux.Router
	service      Service
	webhook      http.Handler
	logger       core.Logger
	maxBodyBytes int64
}

type Option func(*Server)

func WithLogger(logger core.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWebhookHandler mounts the webhook receiver, usually a
// *webhooks.Dispatcher, at RouteWebhook.
func WithWebhookHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.webhook = handler
	}
}

func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBodyBytes = limit
		}
	}
}

func NewServer(service Service, opts ...Option) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		service:      service,
		logger:       glog.Nop(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router returns the underlying router so callers can mount extra routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) setupRoutes() {
	svc := s.service
	post := func(path string, handler http.HandlerFunc) {
		s.router.HandleFunc(path, handler).Methods(http.MethodPost)
	}

	post("/order/create", handleCommand(s,
		func(req core.CreateOrderRequest) command.CreateOrderMessage { return command.CreateOrderMessage{Request: req} },
		command.NewCreateOrderCommand(svc).Execute))
	post("/order/query", handleQuery(s,
		func(req core.QueryOrderRequest) query.QueryOrderMessage { return query.QueryOrderMessage{Request: req} },
		query.NewQueryOrderQuery(svc).Query))
	post("/order/list", handleQuery(s,
		func(req core.ListRequest) query.ListOrdersMessage { return query.ListOrdersMessage{Request: req} },
		query.NewListOrdersQuery(svc).Query))
	post("/order/close", handleCommand(s,
		func(req core.CloseOrderRequest) command.CloseOrderMessage { return command.CloseOrderMessage{Request: req} },
		command.NewCloseOrderCommand(svc).Execute))

	post("/refund", handleCommand(s,
		func(req core.CreateRefundRequest) command.CreateRefundMessage { return command.CreateRefundMessage{Request: req} },
		command.NewCreateRefundCommand(svc).Execute))
	post("/refund/query", handleQuery(s,
		func(req core.QueryRefundRequest) query.QueryRefundMessage { return query.QueryRefundMessage{Request: req} },
		query.NewQueryRefundQuery(svc).Query))
	post("/refund/list", handleQuery(s,
		func(req core.ListRequest) query.ListRefundsMessage { return query.ListRefundsMessage{Request: req} },
		query.NewListRefundsQuery(svc).Query))

	post("/report/reconciliation", handleQuery(s,
		func(req core.ReportQueryRequest) query.QueryReconciliationReportsMessage {
			return query.QueryReconciliationReportsMessage{Request: req}
		},
		query.NewQueryReconciliationReportsQuery(svc).Query))

	post("/payout", handleCommand(s,
		func(req core.CreatePayoutRequest) command.CreatePayoutMessage { return command.CreatePayoutMessage{Request: req} },
		command.NewCreatePayoutCommand(svc).Execute))
	post("/payout/info", handleQuery(s,
		func(req core.QueryPayoutInfoRequest) query.QueryPayoutInfoMessage { return query.QueryPayoutInfoMessage{Request: req} },
		query.NewQueryPayoutInfoQuery(svc).Query))
	post("/payout/detail", handleQuery(s,
		func(req core.QueryPayoutDetailRequest) query.QueryPayoutDetailMessage {
			return query.QueryPayoutDetailMessage{Request: req}
		},
		query.NewQueryPayoutDetailQuery(svc).Query))

	post("/onchain/currency", handleQuery(s,
		func(req core.OnchainCurrencyRequest) query.QueryOnchainCurrenciesMessage {
			return query.QueryOnchainCurrenciesMessage{Request: req}
		},
		query.NewQueryOnchainCurrenciesQuery(svc).Query))
	post("/onchain/quote", handleQuery(s,
		func(req core.OnchainQuoteRequest) query.QueryOnchainQuoteMessage { return query.QueryOnchainQuoteMessage{Request: req} },
		query.NewQueryOnchainQuoteQuery(svc).Query))
	post("/onchain/order/create", handleCommand(s,
		func(req core.CreateOnchainOrderRequest) command.CreateOnchainOrderMessage {
			return command.CreateOnchainOrderMessage{Request: req}
		},
		command.NewCreateOnchainOrderCommand(svc).Execute))
	post("/onchain/order/query", handleQuery(s,
		func(req core.QueryOnchainOrderRequest) query.QueryOnchainOrderMessage {
			return query.QueryOnchainOrderMessage{Request: req}
		},
		query.NewQueryOnchainOrderQuery(svc).Query))
	post("/onchain/refund/create", handleCommand(s,
		func(req core.CreateOnchainRefundRequest) command.CreateOnchainRefundMessage {
			return command.CreateOnchainRefundMessage{Request: req}
		},
		command.NewCreateOnchainRefundCommand(svc).Execute))
	post("/onchain/refund/query", handleQuery(s,
		func(req core.QueryRefundRequest) query.QueryOnchainRefundMessage { return query.QueryOnchainRefundMessage{Request: req} },
		query.NewQueryOnchainRefundQuery(svc).Query))
	post("/onchain/refund/list", handleQuery(s,
		func(req core.ListRequest) query.ListOnchainRefundsMessage { return query.ListOnchainRefundsMessage{Request: req} },
		query.NewListOnchainRefundsQuery(svc).Query))

	if s.webhook != nil {
		s.router.Handle(RouteWebhook, s.webhook).Methods(http.MethodPost)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: core.ServiceErrorNotFound, Message: "route not found"})
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: core.ServiceErrorBadInput, Message: "method not allowed"})
	})
	s.router.Use(s.loggingMiddleware)
}

type validator interface {
	Validate() error
}

func handleCommand[R any, M validator](
	s *Server,
	wrap func(R) M,
	execute func(context.Context, M) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		if err := s.decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		msg := wrap(req)
		if err := msg.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}
		collector := gocmd.NewResult[core.ProviderResult]()
		ctx := gocmd.ContextWithResult(r.Context(), collector)
		if err := execute(ctx, msg); err != nil {
			s.writeError(w, r, err)
			return
		}
		result, _ := collector.Load()
		writeJSON(w, http.StatusOK, successResponse{Success: true, Data: result.Data})
	}
}

func handleQuery[R any, M validator](
	s *Server,
	wrap func(R) M,
	run func(context.Context, M) (core.ProviderResult, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req R
		if err := s.decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		msg := wrap(req)
		if err := msg.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}
		result, err := run(r.Context(), msg)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true, Data: result.Data})
	}
}

// decode reads a JSON body into target. An empty body leaves target zero.
func (s *Server) decode(r *http.Request, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodyBytes+1))
	if err != nil {
		return badRequest("request body could not be read")
	}
	if int64(len(body)) > s.maxBodyBytes {
		return badRequest("request body is too large")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return badRequest("request body is not valid JSON")
		case errors.As(err, &typeErr):
			return badRequest("field " + typeErr.Field + " has the wrong type")
		default:
			return badRequest("request body is invalid: " + err.Error())
		}
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	rich := core.MapError(err)
	status := rich.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	response := errorResponse{
		Code:    rich.TextCode,
		Message: rich.Message,
	}
	for _, fieldErr := range rich.AllValidationErrors() {
		response.Fields = append(response.Fields, fieldError{Field: fieldErr.Field, Message: fieldErr.Message})
	}
	if providerCode, ok := rich.Metadata[core.ErrorMetaProviderCode]; ok {
		response.ProviderCode = providerCode
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("http request failed",
			"path", r.URL.Path,
			"status", status,
			"text_code", rich.TextCode,
			"error", err.Error(),
		)
	}
	writeJSON(w, status, response)
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success      bool         `json:"success"`
	Code         string       `json:"code"`
	Message      string       `json:"msg"`
	ProviderCode any          `json:"providerCode,omitempty"`
	Fields       []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", time.Since(startedAt).Milliseconds(),
		)
	})
}
