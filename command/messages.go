package command

import (
	"strings"

	"github.com/goliatone/go-kucoinpay/core"
)

const (
	TypeCreateOrder         = "kucoinpay.command.order.create"
	TypeCloseOrder          = "kucoinpay.command.order.close"
	TypeCreateRefund        = "kucoinpay.command.refund.create"
	TypeCreatePayout        = "kucoinpay.command.payout.create"
	TypeCreateOnchainOrder  = "kucoinpay.command.onchain_order.create"
	TypeCreateOnchainRefund = "kucoinpay.command.onchain_refund.create"
)

type CreateOrderMessage struct {
	Request core.CreateOrderRequest
}

func (CreateOrderMessage) Type() string { return TypeCreateOrder }

func (m CreateOrderMessage) Validate() error {
	if strings.TrimSpace(m.Request.OrderCurrency) == "" {
		return commandValidationError("orderCurrency", "order currency is required")
	}
	if !m.Request.OrderAmount.IsPositive() {
		return commandValidationError("orderAmount", "order amount must be positive")
	}
	return nil
}

type CloseOrderMessage struct {
	Request core.CloseOrderRequest
}

func (CloseOrderMessage) Type() string { return TypeCloseOrder }

func (m CloseOrderMessage) Validate() error {
	if strings.TrimSpace(m.Request.RequestID) == "" {
		return commandValidationError("requestId", "request id is required")
	}
	return nil
}

type CreateRefundMessage struct {
	Request core.CreateRefundRequest
}

func (CreateRefundMessage) Type() string { return TypeCreateRefund }

func (m CreateRefundMessage) Validate() error {
	if strings.TrimSpace(m.Request.PayID) == "" {
		return commandValidationError("payID", "pay order id is required")
	}
	if strings.TrimSpace(m.Request.RequestID) == "" {
		return commandValidationError("requestId", "request id is required")
	}
	return nil
}

type CreatePayoutMessage struct {
	Request core.CreatePayoutRequest
}

func (CreatePayoutMessage) Type() string { return TypeCreatePayout }

func (m CreatePayoutMessage) Validate() error {
	if strings.TrimSpace(m.Request.RequestID) == "" {
		return commandValidationError("requestId", "request id is required")
	}
	if len(m.Request.WithdrawDetailDtoList) == 0 {
		return commandValidationError("withdrawDetailDtoList", "at least one payout detail is required")
	}
	return nil
}

type CreateOnchainOrderMessage struct {
	Request core.CreateOnchainOrderRequest
}

func (CreateOnchainOrderMessage) Type() string { return TypeCreateOnchainOrder }

func (m CreateOnchainOrderMessage) Validate() error {
	if strings.TrimSpace(m.Request.RequestID) == "" {
		return commandValidationError("requestId", "request id is required")
	}
	if strings.TrimSpace(m.Request.Chain) == "" {
		return commandValidationError("chain", "chain is required")
	}
	return nil
}

type CreateOnchainRefundMessage struct {
	Request core.CreateOnchainRefundRequest
}

func (CreateOnchainRefundMessage) Type() string { return TypeCreateOnchainRefund }

func (m CreateOnchainRefundMessage) Validate() error {
	if strings.TrimSpace(m.Request.RequestID) == "" {
		return commandValidationError("requestId", "request id is required")
	}
	if strings.TrimSpace(m.Request.PayOrderID) == "" {
		return commandValidationError("payOrderId", "pay order id is required")
	}
	return nil
}
