package canonical

type Operation string

const (
	OrderCreate          Operation = "order.create"
	OrderQuery           Operation = "order.query"
	OrderList            Operation = "order.list"
	OrderClose           Operation = "order.close"
	RefundCreate         Operation = "refund.create"
	RefundQuery          Operation = "refund.query"
	RefundList           Operation = "refund.list"
	ReportQuery          Operation = "report.query"
	PayoutCreate         Operation = "payout.create"
	PayoutInfo           Operation = "payout.info"
	PayoutDetail         Operation = "payout.detail"
	OnchainCurrencyQuery Operation = "onchain.currency.query"
	OnchainQuote         Operation = "onchain.quote"
	OnchainOrderCreate   Operation = "onchain.order.create"
	OnchainOrderQuery    Operation = "onchain.order.query"
	OnchainRefundCreate  Operation = "onchain.refund.create"
	OnchainRefundQuery   Operation = "onchain.refund.query"
	OnchainRefundList    Operation = "onchain.refund.list"

	WebhookTrade          Operation = "webhook.trade"
	WebhookRefund         Operation = "webhook.refund"
	WebhookPayout         Operation = "webhook.payout"
	WebhookOnchainPayment Operation = "webhook.onchain_payment"
	WebhookOnchainRefund  Operation = "webhook.onchain_refund"
)

// Orders are contracts with the counterparty. Do not reorder.
var Orders = map[Operation][]string{
	OrderCreate: {
		"apiKey", "expireTime", "orderAmount", "orderCurrency", "reference",
		"requestId", "source", "subMerchantId", "timestamp",
	},
	OrderQuery: {"apiKey", "payOrderId", "requestId", "timestamp"},
	OrderList:  {"apiKey", "endTime", "startTime", "timestamp"},
	OrderClose: {"apiKey", "requestId", "timestamp"},
	RefundCreate: {
		"apiKey", "payID", "refundAmount", "refundReason", "requestId",
		"subMerchantId", "timestamp",
	},
	RefundQuery: {"apiKey", "refundId", "requestId", "timestamp"},
	RefundList:  {"apiKey", "endTime", "startTime", "timestamp"},
	ReportQuery: {"apiKey", "endDate", "reportType", "startDate", "timestamp"},
	PayoutCreate: {
		"apiKey", "batchName", "bizScene", "chain", "currency", "payoutType",
		"requestId", "timestamp", "totalAmount", "totalCount",
	},
	PayoutInfo:           {"apiKey", "batchNo", "requestId", "timestamp"},
	PayoutDetail:         {"apiKey", "receiverAddress", "receiverUID", "requestId", "timestamp"},
	OnchainCurrencyQuery: {"apiKey", "cryptoCurrency", "timestamp"},
	OnchainQuote: {
		"apiKey", "chain", "cryptoCurrency", "fiatAmount", "fiatCurrency", "timestamp",
	},
	OnchainOrderCreate: {
		"apiKey", "chain", "cryptoAmount", "cryptoCurrency", "fiatAmount",
		"fiatCurrency", "requestId", "subMerchantId", "timestamp",
	},
	OnchainOrderQuery: {"apiKey", "payOrderId", "requestId", "timestamp"},
	OnchainRefundCreate: {
		"address", "apiKey", "chain", "payOrderId", "refundAmount", "requestId",
		"subMerchantId", "timestamp",
	},
	OnchainRefundQuery: {"apiKey", "refundId", "requestId", "timestamp"},
	OnchainRefundList:  {"apiKey", "endTime", "startTime", "timestamp"},

	WebhookTrade: {
		"apiKey", "errorReason", "orderAmount", "orderCurrency", "payOrderId",
		"payTime", "reference", "refundCurrency", "requestId", "status",
		"subMerchantId", "timestamp",
	},
	WebhookRefund: {
		"apiKey", "merchantId", "payID", "refundAmount", "refundCurrency",
		"refundFinishTime", "refundId", "remainingRefundAmount",
		"remainingRefundCurrency", "requestId", "status", "subMerchantId",
		"timestamp",
	},
	WebhookPayout: {
		"apiKey", "batchNo", "chain", "currency", "payoutType", "processingFee",
		"requestId", "status", "totalAmount", "totalCount", "totalPaidAmount",
		"totalPayoutFee", "timestamp",
	},
	WebhookOnchainPayment: {
		"apiKey", "assetUniqueId", "chain", "currency", "paymentAmount",
		"paymentCurrency", "paymentOrderType", "paymentStatus", "payOrderId",
		"requestId", "status", "subMerchantId", "timestamp",
	},
	WebhookOnchainRefund: {
		"apiKey", "assetUniqueId", "chain", "feeAmount", "payOrderId",
		"refundAmount", "refundCurrency", "refundId", "remainingRefundAmount",
		"remainingRefundCurrency", "requestId", "status", "subMerchantId",
		"timestamp",
	},
}

// strictOperations require every component stripped of whitespace and
// zero-width characters before and after joining.
var strictOperations = map[Operation]bool{
	OnchainRefundCreate: true,
}

// Strict reports whether op strips whitespace from its components.
func Strict(op Operation) bool {
	return strictOperations[op]
}

// FieldOrder returns a copy of the declared order for op.
func FieldOrder(op Operation) ([]string, bool) {
	order, ok := Orders[op]
	if !ok {
		return nil, false
	}
	return append([]string(nil), order...), true
}
