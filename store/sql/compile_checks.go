package sqlstore

import (
	"github.com/goliatone/go-kucoinpay/core"
	"github.com/goliatone/go-kucoinpay/webhooks"
)

var (
	_ core.OrderStore             = (*OrderStore)(nil)
	_ core.RefundStore            = (*RefundStore)(nil)
	_ core.PayoutStore            = (*PayoutStore)(nil)
	_ core.OnchainOrderStore      = (*OnchainOrderStore)(nil)
	_ core.ReportStore            = (*ReportStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
	_ webhooks.DeliveryLedger     = (*WebhookDeliveryStore)(nil)
)
