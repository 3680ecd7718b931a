package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusCreated          = "CREATED"
	OrderStatusCancelled        = "CANCELLED"
	OrderStatusFailed           = "FAILED"
	OrderStatusProcessing       = "PROCESSING"
	OrderStatusUserPayCompleted = "USER_PAY_COMPLETED"
	OrderStatusSucceeded        = "SUCCEEDED"
	OrderStatusClosed           = "CLOSED"

	RefundStatusProcessing = "PROCESSING"
	RefundStatusSucceeded  = "SUCCEEDED"
	RefundStatusFailed     = "FAILED"
	RefundStatusPart       = "REFUND_PART"
	RefundStatusFull       = "REFUND_FULL"

	PayoutStatusProcessing    = "PROCESSING"
	PayoutDetailStatusPending = "PENDING"
)

const (
	RefundKindTrade   = "TRADE"
	RefundKindOnchain = "ONCHAIN"

	PayoutTypeOnChain  = "onChain"
	PayoutTypeOffChain = "offChain"
)

type Order struct {
	ID                string
	RequestID         string
	PayOrderID        string
	OrderAmount       decimal.Decimal
	OrderCurrency     string
	Reference         string
	Source            string
	SubMerchantID     string
	ExpireTime        int64
	QRCodeURL         string
	AppPayURL         string
	Status            string
	PayTime           *int64
	CanRefundAmount   *decimal.Decimal
	RefundCurrency    string
	ErrorReason       string
	PayerUserID       string
	RetrieveKYCStatus *bool
	PayerDetail       string
	Goods             json.RawMessage
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OrderKey struct {
	PayOrderID string
	RequestID  string
}

// OrderUpsert patches an order. Nil fields are left untouched. A missing
// order is only inserted when CreateIfMissing is set and RequestID is known.
type OrderUpsert struct {
	Key               OrderKey
	CreateIfMissing   bool
	OrderAmount       *decimal.Decimal
	OrderCurrency     *string
	Reference         *string
	Source            *string
	SubMerchantID     *string
	ExpireTime        *int64
	QRCodeURL         *string
	AppPayURL         *string
	Status            *string
	PayTime           *int64
	CanRefundAmount   *decimal.Decimal
	RefundCurrency    *string
	ErrorReason       *string
	PayerUserID       *string
	RetrieveKYCStatus *bool
	PayerDetail       *string
	Goods             json.RawMessage
}

type Refund struct {
	ID                      string
	Kind                    string
	RequestID               string
	RefundID                string
	PayOrderID              string
	MerchantID              string
	SubMerchantID           string
	RefundAmount            *decimal.Decimal
	RefundCurrency          string
	RemainingRefundAmount   *decimal.Decimal
	RemainingRefundCurrency string
	RefundReason            string
	Reference               string
	Status                  string
	RefundFinishTime        *int64
	Chain                   string
	Address                 string
	FeeAmount               *decimal.Decimal
	AssetUniqueID           string
	PayerUserID             string
	RetrieveKYCStatus       *bool
	PayerDetail             string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type RefundKey struct {
	RefundID  string
	RequestID string
}

type RefundUpsert struct {
	Key                     RefundKey
	CreateIfMissing         bool
	Kind                    string
	PayOrderID              *string
	MerchantID              *string
	SubMerchantID           *string
	RefundAmount            *decimal.Decimal
	RefundCurrency          *string
	RemainingRefundAmount   *decimal.Decimal
	RemainingRefundCurrency *string
	RefundReason            *string
	Reference               *string
	Status                  *string
	RefundFinishTime        *int64
	Chain                   *string
	Address                 *string
	FeeAmount               *decimal.Decimal
	AssetUniqueID           *string
	PayerUserID             *string
	RetrieveKYCStatus       *bool
	PayerDetail             *string
}

type Payout struct {
	ID              string
	RequestID       string
	BatchNo         string
	BatchName       string
	BizScene        string
	PayoutType      string
	Currency        string
	Chain           string
	TotalAmount     decimal.Decimal
	TotalCount      int64
	TotalPaidAmount *decimal.Decimal
	ProcessingFee   *decimal.Decimal
	TotalPayoutFee  *decimal.Decimal
	Status          string
	Details         []PayoutDetail
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PayoutDetail struct {
	ID              string
	PayoutID        string
	DetailID        string
	ReceiverUID     string
	ReceiverAddress string
	Amount          decimal.Decimal
	Remark          string
	Status          string
	PayoutFee       *decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PayoutKey struct {
	RequestID string
	BatchNo   string
}

// PayoutUpsert patches a payout batch and its details. Details are matched
// by DetailID and inserted when missing.
type PayoutUpsert struct {
	Key             PayoutKey
	CreateIfMissing bool
	BatchName       *string
	BizScene        *string
	PayoutType      *string
	Currency        *string
	Chain           *string
	TotalAmount     *decimal.Decimal
	TotalCount      *int64
	TotalPaidAmount *decimal.Decimal
	ProcessingFee   *decimal.Decimal
	TotalPayoutFee  *decimal.Decimal
	Status          *string
	Details         []PayoutDetailUpsert
}

type PayoutDetailUpsert struct {
	DetailID        string
	ReceiverUID     *string
	ReceiverAddress *string
	Amount          *decimal.Decimal
	Remark          *string
	Status          *string
	PayoutFee       *decimal.Decimal
}

type OnchainOrder struct {
	ID              string
	RequestID       string
	PayOrderID      string
	SubMerchantID   string
	FiatCurrency    string
	FiatAmount      *decimal.Decimal
	CryptoCurrency  string
	CryptoAmount    decimal.Decimal
	Chain           string
	Reference       string
	WalletAddress   string
	ExpireTime      *int64
	Status          string
	PaymentStatus   string
	PaymentAmount   *decimal.Decimal
	PaymentCurrency string
	AssetUniqueID   string
	Goods           json.RawMessage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OnchainOrderKey struct {
	RequestID  string
	PayOrderID string
}

type OnchainOrderUpsert struct {
	Key             OnchainOrderKey
	CreateIfMissing bool
	SubMerchantID   *string
	FiatCurrency    *string
	FiatAmount      *decimal.Decimal
	CryptoCurrency  *string
	CryptoAmount    *decimal.Decimal
	Chain           *string
	Reference       *string
	WalletAddress   *string
	ExpireTime      *int64
	Status          *string
	PaymentStatus   *string
	PaymentAmount   *decimal.Decimal
	PaymentCurrency *string
	AssetUniqueID   *string
	Goods           json.RawMessage
}

type Report struct {
	ID          string
	ReportType  string
	ReportDate  string
	FileName    string
	DownloadURL string
	Status      string
	Payload     json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ReportUpsert struct {
	ReportType  string
	ReportDate  string
	FileName    *string
	DownloadURL *string
	Status      *string
	Payload     json.RawMessage
}

// StringValue returns nil for blank strings.
func StringValue(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func DecimalValue(value decimal.Decimal, ok bool) *decimal.Decimal {
	if !ok {
		return nil
	}
	return &value
}

func Int64Value(value int64, ok bool) *int64 {
	if !ok {
		return nil
	}
	return &value
}

func BoolValue(value bool, ok bool) *bool {
	if !ok {
		return nil
	}
	return &value
}
