package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kucoinpay/core"
)

// MutatingService is the part of core.Service that creates or closes
// provider-side records.
type MutatingService interface {
	CreateOrder(ctx context.Context, req core.CreateOrderRequest) (core.ProviderResult, error)
	CloseOrder(ctx context.Context, req core.CloseOrderRequest) (core.ProviderResult, error)
	CreateRefund(ctx context.Context, req core.CreateRefundRequest) (core.ProviderResult, error)
	CreatePayout(ctx context.Context, req core.CreatePayoutRequest) (core.ProviderResult, error)
	CreateOnchainOrder(ctx context.Context, req core.CreateOnchainOrderRequest) (core.ProviderResult, error)
	CreateOnchainRefund(ctx context.Context, req core.CreateOnchainRefundRequest) (core.ProviderResult, error)
}

type CreateOrderCommand struct {
	service MutatingService
}

func NewCreateOrderCommand(service MutatingService) *CreateOrderCommand {
	return &CreateOrderCommand{service: service}
}

func (c *CreateOrderCommand) Execute(ctx context.Context, msg CreateOrderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create order service is required")
	}
	out, err := c.service.CreateOrder(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CloseOrderCommand struct {
	service MutatingService
}

func NewCloseOrderCommand(service MutatingService) *CloseOrderCommand {
	return &CloseOrderCommand{service: service}
}

func (c *CloseOrderCommand) Execute(ctx context.Context, msg CloseOrderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: close order service is required")
	}
	out, err := c.service.CloseOrder(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateRefundCommand struct {
	service MutatingService
}

func NewCreateRefundCommand(service MutatingService) *CreateRefundCommand {
	return &CreateRefundCommand{service: service}
}

func (c *CreateRefundCommand) Execute(ctx context.Context, msg CreateRefundMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: refund service is required")
	}
	out, err := c.service.CreateRefund(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreatePayoutCommand struct {
	service MutatingService
}

func NewCreatePayoutCommand(service MutatingService) *CreatePayoutCommand {
	return &CreatePayoutCommand{service: service}
}

func (c *CreatePayoutCommand) Execute(ctx context.Context, msg CreatePayoutMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: payout service is required")
	}
	out, err := c.service.CreatePayout(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateOnchainOrderCommand struct {
	service MutatingService
}

func NewCreateOnchainOrderCommand(service MutatingService) *CreateOnchainOrderCommand {
	return &CreateOnchainOrderCommand{service: service}
}

func (c *CreateOnchainOrderCommand) Execute(ctx context.Context, msg CreateOnchainOrderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: on-chain order service is required")
	}
	out, err := c.service.CreateOnchainOrder(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateOnchainRefundCommand struct {
	service MutatingService
}

func NewCreateOnchainRefundCommand(service MutatingService) *CreateOnchainRefundCommand {
	return &CreateOnchainRefundCommand{service: service}
}

func (c *CreateOnchainRefundCommand) Execute(ctx context.Context, msg CreateOnchainRefundMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: on-chain refund service is required")
	}
	out, err := c.service.CreateOnchainRefund(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
