// Package gocommand registers the merchant command and query handlers with
// the go-command registry and the process-wide dispatcher, so hosts can send
// messages instead of calling the service directly.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	kucoincommand "github.com/goliatone/go-kucoinpay/command"
	"github.com/goliatone/go-kucoinpay/core"
	kucoinquery "github.com/goliatone/go-kucoinpay/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// SubscribeQuery only subscribes; queries are not registry commands.
func SubscribeQuery[T any, R any](
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...), nil
}

// MerchantService is satisfied by *core.Service.
type MerchantService interface {
	kucoincommand.MutatingService
	kucoinquery.ProviderReader
}

// Subscriptions holds what RegisterMerchantHandlers subscribed. Unsubscribe
// releases all of them.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, sub := range s {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// RegisterMerchantHandlers subscribes every merchant command and query.
// Commands store their core.ProviderResult in the context collector; queries
// return it.
func RegisterMerchantHandlers(
	adapter *RegistryAdapter,
	service MerchantService,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if service == nil {
		return nil, fmt.Errorf("gocommand: merchant service is required")
	}
	subs := Subscriptions{}
	fail := func(err error) (Subscriptions, error) {
		subs.Unsubscribe()
		return nil, err
	}
	addCommand := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	if err := addCommand(RegisterAndSubscribe(adapter, kucoincommand.NewCreateOrderCommand(service), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := addCommand(RegisterAndSubscribe(adapter, kucoincommand.NewCloseOrderCommand(service), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := addCommand(RegisterAndSubscribe(adapter, kucoincommand.NewCreateRefundCommand(service), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := addCommand(RegisterAndSubscribe(adapter, kucoincommand.NewCreatePayoutCommand(service), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := addCommand(RegisterAndSubscribe(adapter, kucoincommand.NewCreateOnchainOrderCommand(service), runnerOpts...)); err != nil {
		return fail(err)
	}
	if err := addCommand(RegisterAndSubscribe(adapter, kucoincommand.NewCreateOnchainRefundCommand(service), runnerOpts...)); err != nil {
		return fail(err)
	}

	queries := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryOrderMessage, core.ProviderResult](kucoinquery.NewQueryOrderQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.ListOrdersMessage, core.ProviderResult](kucoinquery.NewListOrdersQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryRefundMessage, core.ProviderResult](kucoinquery.NewQueryRefundQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.ListRefundsMessage, core.ProviderResult](kucoinquery.NewListRefundsQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryReconciliationReportsMessage, core.ProviderResult](
				kucoinquery.NewQueryReconciliationReportsQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryPayoutInfoMessage, core.ProviderResult](kucoinquery.NewQueryPayoutInfoQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryPayoutDetailMessage, core.ProviderResult](kucoinquery.NewQueryPayoutDetailQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryOnchainCurrenciesMessage, core.ProviderResult](
				kucoinquery.NewQueryOnchainCurrenciesQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryOnchainQuoteMessage, core.ProviderResult](kucoinquery.NewQueryOnchainQuoteQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryOnchainOrderMessage, core.ProviderResult](kucoinquery.NewQueryOnchainOrderQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.QueryOnchainRefundMessage, core.ProviderResult](kucoinquery.NewQueryOnchainRefundQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return SubscribeQuery[kucoinquery.ListOnchainRefundsMessage, core.ProviderResult](kucoinquery.NewListOnchainRefundsQuery(service), runnerOpts...)
		},
	}
	for _, subscribe := range queries {
		if err := addCommand(subscribe()); err != nil {
			return fail(err)
		}
	}
	return subs, nil
}
