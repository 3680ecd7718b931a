package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-kucoinpay/core"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	orderStore           *OrderStore
	refundStore          *RefundStore
	payoutStore          *PayoutStore
	onchainOrderStore    *OnchainOrderStore
	reportStore          *ReportStore
	webhookDeliveryStore *WebhookDeliveryStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.orderStore != nil && f.webhookDeliveryStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) OrderStore() core.OrderStore {
	if f == nil || f.orderStore == nil {
		return nil
	}
	return f.orderStore
}

func (f *RepositoryFactory) RefundStore() core.RefundStore {
	if f == nil || f.refundStore == nil {
		return nil
	}
	return f.refundStore
}

func (f *RepositoryFactory) PayoutStore() core.PayoutStore {
	if f == nil || f.payoutStore == nil {
		return nil
	}
	return f.payoutStore
}

func (f *RepositoryFactory) OnchainOrderStore() core.OnchainOrderStore {
	if f == nil || f.onchainOrderStore == nil {
		return nil
	}
	return f.onchainOrderStore
}

func (f *RepositoryFactory) ReportStore() core.ReportStore {
	if f == nil || f.reportStore == nil {
		return nil
	}
	return f.reportStore
}

// WebhookDeliveryStore is the durable webhook delivery ledger.
func (f *RepositoryFactory) WebhookDeliveryStore() *WebhookDeliveryStore {
	if f == nil {
		return nil
	}
	return f.webhookDeliveryStore
}

func (f *RepositoryFactory) initStores() error {
	orderStore, err := NewOrderStore(f.db)
	if err != nil {
		return err
	}
	refundStore, err := NewRefundStore(f.db)
	if err != nil {
		return err
	}
	payoutStore, err := NewPayoutStore(f.db)
	if err != nil {
		return err
	}
	onchainOrderStore, err := NewOnchainOrderStore(f.db)
	if err != nil {
		return err
	}
	reportStore, err := NewReportStore(f.db)
	if err != nil {
		return err
	}
	webhookDeliveryStore, err := NewWebhookDeliveryStore(f.db)
	if err != nil {
		return err
	}

	f.orderStore = orderStore
	f.refundStore = refundStore
	f.payoutStore = payoutStore
	f.onchainOrderStore = onchainOrderStore
	f.reportStore = reportStore
	f.webhookDeliveryStore = webhookDeliveryStore
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
