package kucoinpay

import (
	"fmt"

	kucoincommand "github.com/goliatone/go-kucoinpay/command"
	"github.com/goliatone/go-kucoinpay/core"
	kucoinquery "github.com/goliatone/go-kucoinpay/query"
)

type CommandQueryService interface {
	kucoincommand.MutatingService
	kucoinquery.ProviderReader
}

type Commands struct {
	CreateOrder         *kucoincommand.CreateOrderCommand
	CloseOrder          *kucoincommand.CloseOrderCommand
	CreateRefund        *kucoincommand.CreateRefundCommand
	CreatePayout        *kucoincommand.CreatePayoutCommand
	CreateOnchainOrder  *kucoincommand.CreateOnchainOrderCommand
	CreateOnchainRefund *kucoincommand.CreateOnchainRefundCommand
}

type Queries struct {
	QueryOrder                 *kucoinquery.QueryOrderQuery
	ListOrders                 *kucoinquery.ListOrdersQuery
	QueryRefund                *kucoinquery.QueryRefundQuery
	ListRefunds                *kucoinquery.ListRefundsQuery
	QueryReconciliationReports *kucoinquery.QueryReconciliationReportsQuery
	QueryPayoutInfo            *kucoinquery.QueryPayoutInfoQuery
	QueryPayoutDetail          *kucoinquery.QueryPayoutDetailQuery
	QueryOnchainCurrencies     *kucoinquery.QueryOnchainCurrenciesQuery
	QueryOnchainQuote          *kucoinquery.QueryOnchainQuoteQuery
	QueryOnchainOrder          *kucoinquery.QueryOnchainOrderQuery
	QueryOnchainRefund         *kucoinquery.QueryOnchainRefundQuery
	ListOnchainRefunds         *kucoinquery.ListOnchainRefundsQuery

	// Stored reads are nil when no matching store is available.
	GetStoredOrder    *kucoinquery.GetStoredOrderQuery
	ListStoredReports *kucoinquery.ListStoredReportsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	orderStore  core.OrderStore
	reportStore core.ReportStore
}

// WithStoredReaders overrides the stores backing the stored-read queries.
func WithStoredReaders(orders core.OrderStore, reports core.ReportStore) FacadeOption {
	return func(options *facadeOptions) {
		options.orderStore = orders
		options.reportStore = reports
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("kucoinpay: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.orderStore == nil || cfg.reportStore == nil {
		deps := resolveDependencies(service)
		if cfg.orderStore == nil {
			cfg.orderStore = deps.OrderStore
		}
		if cfg.reportStore == nil {
			cfg.reportStore = deps.ReportStore
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateOrder:         kucoincommand.NewCreateOrderCommand(service),
		CloseOrder:          kucoincommand.NewCloseOrderCommand(service),
		CreateRefund:        kucoincommand.NewCreateRefundCommand(service),
		CreatePayout:        kucoincommand.NewCreatePayoutCommand(service),
		CreateOnchainOrder:  kucoincommand.NewCreateOnchainOrderCommand(service),
		CreateOnchainRefund: kucoincommand.NewCreateOnchainRefundCommand(service),
	}
	facade.queries = Queries{
		QueryOrder:                 kucoinquery.NewQueryOrderQuery(service),
		ListOrders:                 kucoinquery.NewListOrdersQuery(service),
		QueryRefund:                kucoinquery.NewQueryRefundQuery(service),
		ListRefunds:                kucoinquery.NewListRefundsQuery(service),
		QueryReconciliationReports: kucoinquery.NewQueryReconciliationReportsQuery(service),
		QueryPayoutInfo:            kucoinquery.NewQueryPayoutInfoQuery(service),
		QueryPayoutDetail:          kucoinquery.NewQueryPayoutDetailQuery(service),
		QueryOnchainCurrencies:     kucoinquery.NewQueryOnchainCurrenciesQuery(service),
		QueryOnchainQuote:          kucoinquery.NewQueryOnchainQuoteQuery(service),
		QueryOnchainOrder:          kucoinquery.NewQueryOnchainOrderQuery(service),
		QueryOnchainRefund:         kucoinquery.NewQueryOnchainRefundQuery(service),
		ListOnchainRefunds:         kucoinquery.NewListOnchainRefundsQuery(service),
	}
	if cfg.orderStore != nil {
		facade.queries.GetStoredOrder = kucoinquery.NewGetStoredOrderQuery(cfg.orderStore)
	}
	if cfg.reportStore != nil {
		facade.queries.ListStoredReports = kucoinquery.NewListStoredReportsQuery(cfg.reportStore)
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveDependencies(service CommandQueryService) core.ServiceDependencies {
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return core.ServiceDependencies{}
	}
	return provider.Dependencies()
}
