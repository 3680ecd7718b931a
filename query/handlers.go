package query

import (
	"context"

	"github.com/goliatone/go-kucoinpay/core"
)

// ProviderReader is the read side of core.Service. Every call reaches the
// provider; stored records are refreshed as a side effect.
type ProviderReader interface {
	QueryOrder(ctx context.Context, req core.QueryOrderRequest) (core.ProviderResult, error)
	ListOrders(ctx context.Context, req core.ListRequest) (core.ProviderResult, error)
	QueryRefund(ctx context.Context, req core.QueryRefundRequest) (core.ProviderResult, error)
	ListRefunds(ctx context.Context, req core.ListRequest) (core.ProviderResult, error)
	QueryReconciliationReports(ctx context.Context, req core.ReportQueryRequest) (core.ProviderResult, error)
	QueryPayoutInfo(ctx context.Context, req core.QueryPayoutInfoRequest) (core.ProviderResult, error)
	QueryPayoutDetail(ctx context.Context, req core.QueryPayoutDetailRequest) (core.ProviderResult, error)
	QueryOnchainCurrencies(ctx context.Context, req core.OnchainCurrencyRequest) (core.ProviderResult, error)
	QueryOnchainQuote(ctx context.Context, req core.OnchainQuoteRequest) (core.ProviderResult, error)
	QueryOnchainOrder(ctx context.Context, req core.QueryOnchainOrderRequest) (core.ProviderResult, error)
	QueryOnchainRefund(ctx context.Context, req core.QueryRefundRequest) (core.ProviderResult, error)
	ListOnchainRefunds(ctx context.Context, req core.ListRequest) (core.ProviderResult, error)
}

type QueryOrderQuery struct {
	reader ProviderReader
}

func NewQueryOrderQuery(reader ProviderReader) *QueryOrderQuery {
	return &QueryOrderQuery{reader: reader}
}

func (q *QueryOrderQuery) Query(ctx context.Context, msg QueryOrderMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: order reader is required")
	}
	return q.reader.QueryOrder(ctx, msg.Request)
}

type ListOrdersQuery struct {
	reader ProviderReader
}

func NewListOrdersQuery(reader ProviderReader) *ListOrdersQuery {
	return &ListOrdersQuery{reader: reader}
}

func (q *ListOrdersQuery) Query(ctx context.Context, msg ListOrdersMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: order reader is required")
	}
	return q.reader.ListOrders(ctx, msg.Request)
}

type QueryRefundQuery struct {
	reader ProviderReader
}

func NewQueryRefundQuery(reader ProviderReader) *QueryRefundQuery {
	return &QueryRefundQuery{reader: reader}
}

func (q *QueryRefundQuery) Query(ctx context.Context, msg QueryRefundMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: refund reader is required")
	}
	return q.reader.QueryRefund(ctx, msg.Request)
}

type ListRefundsQuery struct {
	reader ProviderReader
}

func NewListRefundsQuery(reader ProviderReader) *ListRefundsQuery {
	return &ListRefundsQuery{reader: reader}
}

func (q *ListRefundsQuery) Query(ctx context.Context, msg ListRefundsMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: refund reader is required")
	}
	return q.reader.ListRefunds(ctx, msg.Request)
}

type QueryReconciliationReportsQuery struct {
	reader ProviderReader
}

func NewQueryReconciliationReportsQuery(reader ProviderReader) *QueryReconciliationReportsQuery {
	return &QueryReconciliationReportsQuery{reader: reader}
}

func (q *QueryReconciliationReportsQuery) Query(
	ctx context.Context,
	msg QueryReconciliationReportsMessage,
) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: report reader is required")
	}
	return q.reader.QueryReconciliationReports(ctx, msg.Request)
}

type QueryPayoutInfoQuery struct {
	reader ProviderReader
}

func NewQueryPayoutInfoQuery(reader ProviderReader) *QueryPayoutInfoQuery {
	return &QueryPayoutInfoQuery{reader: reader}
}

func (q *QueryPayoutInfoQuery) Query(ctx context.Context, msg QueryPayoutInfoMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: payout reader is required")
	}
	return q.reader.QueryPayoutInfo(ctx, msg.Request)
}

type QueryPayoutDetailQuery struct {
	reader ProviderReader
}

func NewQueryPayoutDetailQuery(reader ProviderReader) *QueryPayoutDetailQuery {
	return &QueryPayoutDetailQuery{reader: reader}
}

func (q *QueryPayoutDetailQuery) Query(ctx context.Context, msg QueryPayoutDetailMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: payout reader is required")
	}
	return q.reader.QueryPayoutDetail(ctx, msg.Request)
}

type QueryOnchainCurrenciesQuery struct {
	reader ProviderReader
}

func NewQueryOnchainCurrenciesQuery(reader ProviderReader) *QueryOnchainCurrenciesQuery {
	return &QueryOnchainCurrenciesQuery{reader: reader}
}

func (q *QueryOnchainCurrenciesQuery) Query(
	ctx context.Context,
	msg QueryOnchainCurrenciesMessage,
) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: on-chain reader is required")
	}
	return q.reader.QueryOnchainCurrencies(ctx, msg.Request)
}

type QueryOnchainQuoteQuery struct {
	reader ProviderReader
}

func NewQueryOnchainQuoteQuery(reader ProviderReader) *QueryOnchainQuoteQuery {
	return &QueryOnchainQuoteQuery{reader: reader}
}

func (q *QueryOnchainQuoteQuery) Query(ctx context.Context, msg QueryOnchainQuoteMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: on-chain reader is required")
	}
	return q.reader.QueryOnchainQuote(ctx, msg.Request)
}

type QueryOnchainOrderQuery struct {
	reader ProviderReader
}

func NewQueryOnchainOrderQuery(reader ProviderReader) *QueryOnchainOrderQuery {
	return &QueryOnchainOrderQuery{reader: reader}
}

func (q *QueryOnchainOrderQuery) Query(ctx context.Context, msg QueryOnchainOrderMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: on-chain reader is required")
	}
	return q.reader.QueryOnchainOrder(ctx, msg.Request)
}

type QueryOnchainRefundQuery struct {
	reader ProviderReader
}

func NewQueryOnchainRefundQuery(reader ProviderReader) *QueryOnchainRefundQuery {
	return &QueryOnchainRefundQuery{reader: reader}
}

func (q *QueryOnchainRefundQuery) Query(ctx context.Context, msg QueryOnchainRefundMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: on-chain reader is required")
	}
	return q.reader.QueryOnchainRefund(ctx, msg.Request)
}

type ListOnchainRefundsQuery struct {
	reader ProviderReader
}

func NewListOnchainRefundsQuery(reader ProviderReader) *ListOnchainRefundsQuery {
	return &ListOnchainRefundsQuery{reader: reader}
}

func (q *ListOnchainRefundsQuery) Query(ctx context.Context, msg ListOnchainRefundsMessage) (core.ProviderResult, error) {
	if q == nil || q.reader == nil {
		return core.ProviderResult{}, queryDependencyError("query: on-chain reader is required")
	}
	return q.reader.ListOnchainRefunds(ctx, msg.Request)
}

type GetStoredOrderQuery struct {
	store core.OrderStore
}

func NewGetStoredOrderQuery(store core.OrderStore) *GetStoredOrderQuery {
	return &GetStoredOrderQuery{store: store}
}

func (q *GetStoredOrderQuery) Query(ctx context.Context, msg GetStoredOrderMessage) (core.Order, error) {
	if q == nil || q.store == nil {
		return core.Order{}, queryDependencyError("query: order store is required")
	}
	return q.store.GetOrder(ctx, msg.Key)
}

type ListStoredReportsQuery struct {
	store core.ReportStore
}

func NewListStoredReportsQuery(store core.ReportStore) *ListStoredReportsQuery {
	return &ListStoredReportsQuery{store: store}
}

func (q *ListStoredReportsQuery) Query(ctx context.Context, msg ListStoredReportsMessage) ([]core.Report, error) {
	if q == nil || q.store == nil {
		return nil, queryDependencyError("query: report store is required")
	}
	return q.store.ListReports(ctx, msg.ReportType, msg.StartDate, msg.EndDate)
}
