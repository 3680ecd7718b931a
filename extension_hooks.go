package kucoinpay

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-kucoinpay/webhooks"
)

// WebhookHandlerPack is a named set of notification handlers that run after
// the local records have been updated.
type WebhookHandlerPack struct {
	Name     string
	Handlers webhooks.Handlers
}

type CommandQueryBundleFactory func(service CommandQueryService) (any, error)

type ExtensionHooks struct {
	mu sync.RWMutex

	webhookPacks map[string]WebhookHandlerPack
	bundles      map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		webhookPacks: map[string]WebhookHandlerPack{},
		bundles:      map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterWebhookHandlers(pack WebhookHandlerPack) error {
	if h == nil {
		return fmt.Errorf("kucoinpay: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("kucoinpay: webhook handler pack name is required")
	}
	if pack.Handlers == nil {
		return fmt.Errorf("kucoinpay: webhook handler pack %q has no handlers", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.webhookPacks[name]; exists {
		return fmt.Errorf("kucoinpay: webhook handler pack %q already registered", name)
	}
	h.webhookPacks[name] = WebhookHandlerPack{Name: name, Handlers: pack.Handlers}
	return nil
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("kucoinpay: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("kucoinpay: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("kucoinpay: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("kucoinpay: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// WebhookHandlerPacks returns the registered packs ordered by name.
func (h *ExtensionHooks) WebhookHandlerPacks() []WebhookHandlerPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.webhookPacks))
	for name := range h.webhookPacks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]WebhookHandlerPack, 0, len(names))
	for _, name := range names {
		out = append(out, h.webhookPacks[name])
	}
	return out
}

// ComposeWebhookHandlers runs base first and then every registered pack in
// name order. The first error stops the chain and fails the delivery.
func (h *ExtensionHooks) ComposeWebhookHandlers(base webhooks.Handlers) webhooks.Handlers {
	chain := webhookChain{}
	if base != nil {
		chain = append(chain, base)
	}
	for _, pack := range h.WebhookHandlerPacks() {
		chain = append(chain, pack.Handlers)
	}
	return chain
}

func (h *ExtensionHooks) BuildCommandQueryBundles(
	service CommandQueryService,
) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("kucoinpay: command/query service is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		names = append(names, name)
		factories[name] = factory
	}
	h.mu.RUnlock()
	sort.Strings(names)

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, fmt.Errorf("kucoinpay: build bundle %q: %w", name, err)
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type webhookChain []webhooks.Handlers

func (c webhookChain) HandleTrade(ctx context.Context, event webhooks.TradeEvent) error {
	return c.each(func(h webhooks.Handlers) error { return h.HandleTrade(ctx, event) })
}

func (c webhookChain) HandleRefund(ctx context.Context, event webhooks.RefundEvent) error {
	return c.each(func(h webhooks.Handlers) error { return h.HandleRefund(ctx, event) })
}

func (c webhookChain) HandlePayout(ctx context.Context, event webhooks.PayoutEvent) error {
	return c.each(func(h webhooks.Handlers) error { return h.HandlePayout(ctx, event) })
}

func (c webhookChain) HandleOnchainPayment(ctx context.Context, event webhooks.OnchainPaymentEvent) error {
	return c.each(func(h webhooks.Handlers) error { return h.HandleOnchainPayment(ctx, event) })
}

func (c webhookChain) HandleOnchainRefund(ctx context.Context, event webhooks.OnchainRefundEvent) error {
	return c.each(func(h webhooks.Handlers) error { return h.HandleOnchainRefund(ctx, event) })
}

func (c webhookChain) each(call func(webhooks.Handlers) error) error {
	for _, handlers := range c {
		if err := call(handlers); err != nil {
			return err
		}
	}
	return nil
}
