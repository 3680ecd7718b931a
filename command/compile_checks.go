package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-kucoinpay/core"
)

var (
	_ gocmd.Commander[CreateOrderMessage]         = (*CreateOrderCommand)(nil)
	_ gocmd.Commander[CloseOrderMessage]          = (*CloseOrderCommand)(nil)
	_ gocmd.Commander[CreateRefundMessage]        = (*CreateRefundCommand)(nil)
	_ gocmd.Commander[CreatePayoutMessage]        = (*CreatePayoutCommand)(nil)
	_ gocmd.Commander[CreateOnchainOrderMessage]  = (*CreateOnchainOrderCommand)(nil)
	_ gocmd.Commander[CreateOnchainRefundMessage] = (*CreateOnchainRefundCommand)(nil)
	_ MutatingService                             = (*core.Service)(nil)
)
