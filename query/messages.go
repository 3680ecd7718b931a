package query

import (
	"strings"

	"github.com/goliatone/go-kucoinpay/core"
)

const (
	TypeQueryOrder                 = "kucoinpay.query.order.query"
	TypeListOrders                 = "kucoinpay.query.order.list"
	TypeQueryRefund                = "kucoinpay.query.refund.query"
	TypeListRefunds                = "kucoinpay.query.refund.list"
	TypeQueryReconciliationReports = "kucoinpay.query.report.reconciliation"
	TypeQueryPayoutInfo            = "kucoinpay.query.payout.info"
	TypeQueryPayoutDetail          = "kucoinpay.query.payout.detail"
	TypeQueryOnchainCurrencies     = "kucoinpay.query.onchain.currency"
	TypeQueryOnchainQuote          = "kucoinpay.query.onchain.quote"
	TypeQueryOnchainOrder          = "kucoinpay.query.onchain_order.query"
	TypeQueryOnchainRefund         = "kucoinpay.query.onchain_refund.query"
	TypeListOnchainRefunds         = "kucoinpay.query.onchain_refund.list"
	TypeGetStoredOrder             = "kucoinpay.query.stored_order.get"
	TypeListStoredReports          = "kucoinpay.query.stored_report.list"
)

type QueryOrderMessage struct {
	Request core.QueryOrderRequest
}

func (QueryOrderMessage) Type() string { return TypeQueryOrder }

func (m QueryOrderMessage) Validate() error {
	return requireOneOf("payOrderId", m.Request.PayOrderID, m.Request.RequestID)
}

type ListOrdersMessage struct {
	Request core.ListRequest
}

func (ListOrdersMessage) Type() string { return TypeListOrders }

func (m ListOrdersMessage) Validate() error {
	return validateList(m.Request)
}

type QueryRefundMessage struct {
	Request core.QueryRefundRequest
}

func (QueryRefundMessage) Type() string { return TypeQueryRefund }

func (m QueryRefundMessage) Validate() error {
	return requireOneOf("refundId", m.Request.RefundID, m.Request.RequestID)
}

type ListRefundsMessage struct {
	Request core.ListRequest
}

func (ListRefundsMessage) Type() string { return TypeListRefunds }

func (m ListRefundsMessage) Validate() error {
	return validateList(m.Request)
}

type QueryReconciliationReportsMessage struct {
	Request core.ReportQueryRequest
}

func (QueryReconciliationReportsMessage) Type() string { return TypeQueryReconciliationReports }

func (m QueryReconciliationReportsMessage) Validate() error {
	if strings.TrimSpace(m.Request.ReportType) == "" {
		return queryValidationError("reportType", "report type is required")
	}
	return nil
}

type QueryPayoutInfoMessage struct {
	Request core.QueryPayoutInfoRequest
}

func (QueryPayoutInfoMessage) Type() string { return TypeQueryPayoutInfo }

func (m QueryPayoutInfoMessage) Validate() error {
	return requireOneOf("requestId", m.Request.RequestID, m.Request.BatchNo)
}

type QueryPayoutDetailMessage struct {
	Request core.QueryPayoutDetailRequest
}

func (QueryPayoutDetailMessage) Type() string { return TypeQueryPayoutDetail }

func (m QueryPayoutDetailMessage) Validate() error {
	if strings.TrimSpace(m.Request.RequestID) == "" {
		return queryValidationError("requestId", "request id is required")
	}
	return requireOneOf("receiverUID", m.Request.ReceiverUID, m.Request.ReceiverAddress)
}

type QueryOnchainCurrenciesMessage struct {
	Request core.OnchainCurrencyRequest
}

func (QueryOnchainCurrenciesMessage) Type() string { return TypeQueryOnchainCurrencies }

func (QueryOnchainCurrenciesMessage) Validate() error { return nil }

type QueryOnchainQuoteMessage struct {
	Request core.OnchainQuoteRequest
}

func (QueryOnchainQuoteMessage) Type() string { return TypeQueryOnchainQuote }

func (m QueryOnchainQuoteMessage) Validate() error {
	if strings.TrimSpace(m.Request.CryptoCurrency) == "" {
		return queryValidationError("cryptoCurrency", "crypto currency is required")
	}
	if strings.TrimSpace(m.Request.Chain) == "" {
		return queryValidationError("chain", "chain is required")
	}
	return nil
}

type QueryOnchainOrderMessage struct {
	Request core.QueryOnchainOrderRequest
}

func (QueryOnchainOrderMessage) Type() string { return TypeQueryOnchainOrder }

func (m QueryOnchainOrderMessage) Validate() error {
	return requireOneOf("payOrderId", m.Request.PayOrderID, m.Request.RequestID)
}

type QueryOnchainRefundMessage struct {
	Request core.QueryRefundRequest
}

func (QueryOnchainRefundMessage) Type() string { return TypeQueryOnchainRefund }

func (m QueryOnchainRefundMessage) Validate() error {
	return requireOneOf("refundId", m.Request.RefundID, m.Request.RequestID)
}

type ListOnchainRefundsMessage struct {
	Request core.ListRequest
}

func (ListOnchainRefundsMessage) Type() string { return TypeListOnchainRefunds }

func (m ListOnchainRefundsMessage) Validate() error {
	return validateList(m.Request)
}

// GetStoredOrderMessage reads the locally persisted order, without calling
// the provider.
type GetStoredOrderMessage struct {
	Key core.OrderKey
}

func (GetStoredOrderMessage) Type() string { return TypeGetStoredOrder }

func (m GetStoredOrderMessage) Validate() error {
	return requireOneOf("payOrderId", m.Key.PayOrderID, m.Key.RequestID)
}

type ListStoredReportsMessage struct {
	ReportType string
	StartDate  string
	EndDate    string
}

func (ListStoredReportsMessage) Type() string { return TypeListStoredReports }

func (m ListStoredReportsMessage) Validate() error {
	start := strings.TrimSpace(m.StartDate)
	end := strings.TrimSpace(m.EndDate)
	if start != "" && end != "" && end < start {
		return queryValidationError("endDate", "end date must not be before start date")
	}
	return nil
}

func requireOneOf(field string, values ...string) error {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return nil
		}
	}
	return queryValidationError(field, "one of the lookup identifiers is required")
}

func validateList(req core.ListRequest) error {
	if req.StartTime <= 0 {
		return queryValidationError("startTime", "start time is required")
	}
	if req.EndTime <= 0 {
		return queryValidationError("endTime", "end time is required")
	}
	if req.EndTime < req.StartTime {
		return queryValidationError("endTime", "end time must not be before start time")
	}
	return nil
}
