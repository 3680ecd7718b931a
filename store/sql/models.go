package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type orderRecord struct {
	bun.BaseModel `bun:"table:kucoin_orders,alias:ko"`

	ID                string              `bun:"id,pk"`
	RequestID         string              `bun:"request_id,nullzero"`
	PayOrderID        string              `bun:"pay_order_id,nullzero"`
	OrderAmount       decimal.Decimal     `bun:"order_amount,notnull"`
	OrderCurrency     string              `bun:"order_currency"`
	Reference         string              `bun:"reference"`
	Source            string              `bun:"source"`
	SubMerchantID     string              `bun:"sub_merchant_id"`
	ExpireTime        int64               `bun:"expire_time"`
	QRCodeURL         string              `bun:"qrcode_url"`
	AppPayURL         string              `bun:"app_pay_url"`
	Status            string              `bun:"status,notnull"`
	PayTime           *int64              `bun:"pay_time"`
	CanRefundAmount   decimal.NullDecimal `bun:"can_refund_amount"`
	RefundCurrency    string              `bun:"refund_currency"`
	ErrorReason       string              `bun:"error_reason"`
	PayerUserID       string              `bun:"payer_user_id"`
	RetrieveKYCStatus *bool               `bun:"retrieve_kyc_status"`
	PayerDetail       string              `bun:"payer_detail"`
	Goods             string              `bun:"goods"`
	CreatedAt         time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type refundRecord struct {
	bun.BaseModel `bun:"table:kucoin_refunds,alias:kr"`

	ID                      string              `bun:"id,pk"`
	Kind                    string              `bun:"kind,notnull"`
	RequestID               string              `bun:"request_id,nullzero"`
	RefundID                string              `bun:"refund_id,nullzero"`
	PayOrderID              string              `bun:"pay_order_id"`
	MerchantID              string              `bun:"merchant_id"`
	SubMerchantID           string              `bun:"sub_merchant_id"`
	RefundAmount            decimal.NullDecimal `bun:"refund_amount"`
	RefundCurrency          string              `bun:"refund_currency"`
	RemainingRefundAmount   decimal.NullDecimal `bun:"remaining_refund_amount"`
	RemainingRefundCurrency string              `bun:"remaining_refund_currency"`
	RefundReason            string              `bun:"refund_reason"`
	Reference               string              `bun:"reference"`
	Status                  string              `bun:"status,notnull"`
	RefundFinishTime        *int64              `bun:"refund_finish_time"`
	Chain                   string              `bun:"chain"`
	Address                 string              `bun:"address"`
	FeeAmount               decimal.NullDecimal `bun:"fee_amount"`
	AssetUniqueID           string              `bun:"asset_unique_id"`
	PayerUserID             string              `bun:"payer_user_id"`
	RetrieveKYCStatus       *bool               `bun:"retrieve_kyc_status"`
	PayerDetail             string              `bun:"payer_detail"`
	CreatedAt               time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt               time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type payoutRecord struct {
	bun.BaseModel `bun:"table:kucoin_payouts,alias:kp"`

	ID              string              `bun:"id,pk"`
	RequestID       string              `bun:"request_id,nullzero"`
	BatchNo         string              `bun:"batch_no,nullzero"`
	BatchName       string              `bun:"batch_name"`
	BizScene        string              `bun:"biz_scene"`
	PayoutType      string              `bun:"payout_type"`
	Currency        string              `bun:"currency"`
	Chain           string              `bun:"chain"`
	TotalAmount     decimal.Decimal     `bun:"total_amount,notnull"`
	TotalCount      int64               `bun:"total_count,notnull"`
	TotalPaidAmount decimal.NullDecimal `bun:"total_paid_amount"`
	ProcessingFee   decimal.NullDecimal `bun:"processing_fee"`
	TotalPayoutFee  decimal.NullDecimal `bun:"total_payout_fee"`
	Status          string              `bun:"status,notnull"`
	CreatedAt       time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type payoutDetailRecord struct {
	bun.BaseModel `bun:"table:kucoin_payout_details,alias:kpd"`

	ID              string              `bun:"id,pk"`
	PayoutID        string              `bun:"payout_id,notnull"`
	DetailID        string              `bun:"detail_id,notnull"`
	ReceiverUID     string              `bun:"receiver_uid"`
	ReceiverAddress string              `bun:"receiver_address"`
	Amount          decimal.Decimal     `bun:"amount,notnull"`
	Remark          string              `bun:"remark"`
	Status          string              `bun:"status,notnull"`
	PayoutFee       decimal.NullDecimal `bun:"payout_fee"`
	CreatedAt       time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type onchainOrderRecord struct {
	bun.BaseModel `bun:"table:kucoin_onchain_orders,alias:koo"`

	ID              string              `bun:"id,pk"`
	RequestID       string              `bun:"request_id,nullzero"`
	PayOrderID      string              `bun:"pay_order_id,nullzero"`
	SubMerchantID   string              `bun:"sub_merchant_id"`
	FiatCurrency    string              `bun:"fiat_currency"`
	FiatAmount      decimal.NullDecimal `bun:"fiat_amount"`
	CryptoCurrency  string              `bun:"crypto_currency"`
	CryptoAmount    decimal.Decimal     `bun:"crypto_amount,notnull"`
	Chain           string              `bun:"chain"`
	Reference       string              `bun:"reference"`
	WalletAddress   string              `bun:"wallet_address"`
	ExpireTime      *int64              `bun:"expire_time"`
	Status          string              `bun:"status,notnull"`
	PaymentStatus   string              `bun:"payment_status"`
	PaymentAmount   decimal.NullDecimal `bun:"payment_amount"`
	PaymentCurrency string              `bun:"payment_currency"`
	AssetUniqueID   string              `bun:"asset_unique_id"`
	Goods           string              `bun:"goods"`
	CreatedAt       time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type reportRecord struct {
	bun.BaseModel `bun:"table:kucoin_reports,alias:krp"`

	ID          string    `bun:"id,pk"`
	ReportType  string    `bun:"report_type,notnull"`
	ReportDate  string    `bun:"report_date,notnull"`
	FileName    string    `bun:"file_name"`
	DownloadURL string    `bun:"download_url"`
	Status      string    `bun:"status"`
	Payload     string    `bun:"payload"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type webhookDeliveryRecord struct {
	bun.BaseModel `bun:"table:kucoin_webhook_deliveries,alias:kwd"`

	ID          string    `bun:"id,pk"`
	EventType   string    `bun:"event_type,notnull"`
	DeliveryKey string    `bun:"delivery_key,notnull"`
	Status      string    `bun:"status,notnull"`
	Attempts    int       `bun:"attempts,notnull"`
	LastError   string    `bun:"last_error"`
	Payload     []byte    `bun:"payload"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
