package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kucoinpay/core"
)

var (
	_ gocmd.Querier[QueryOrderMessage, core.ProviderResult]                 = (*QueryOrderQuery)(nil)
	_ gocmd.Querier[ListOrdersMessage, core.ProviderResult]                 = (*ListOrdersQuery)(nil)
	_ gocmd.Querier[QueryRefundMessage, core.ProviderResult]                = (*QueryRefundQuery)(nil)
	_ gocmd.Querier[ListRefundsMessage, core.ProviderResult]                = (*ListRefundsQuery)(nil)
	_ gocmd.Querier[QueryReconciliationReportsMessage, core.ProviderResult] = (*QueryReconciliationReportsQuery)(nil)
	_ gocmd.Querier[QueryPayoutInfoMessage, core.ProviderResult]            = (*QueryPayoutInfoQuery)(nil)
	_ gocmd.Querier[QueryPayoutDetailMessage, core.ProviderResult]          = (*QueryPayoutDetailQuery)(nil)
	_ gocmd.Querier[QueryOnchainCurrenciesMessage, core.ProviderResult]     = (*QueryOnchainCurrenciesQuery)(nil)
	_ gocmd.Querier[QueryOnchainQuoteMessage, core.ProviderResult]          = (*QueryOnchainQuoteQuery)(nil)
	_ gocmd.Querier[QueryOnchainOrderMessage, core.ProviderResult]          = (*QueryOnchainOrderQuery)(nil)
	_ gocmd.Querier[QueryOnchainRefundMessage, core.ProviderResult]         = (*QueryOnchainRefundQuery)(nil)
	_ gocmd.Querier[ListOnchainRefundsMessage, core.ProviderResult]         = (*ListOnchainRefundsQuery)(nil)
	_ gocmd.Querier[GetStoredOrderMessage, core.Order]                      = (*GetStoredOrderQuery)(nil)
	_ gocmd.Querier[ListStoredReportsMessage, []core.Report]                = (*ListStoredReportsQuery)(nil)
	_ ProviderReader                                                        = (*core.Service)(nil)
)
