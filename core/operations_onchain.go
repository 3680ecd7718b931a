package core

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/shopspring/decimal"
)

const onchainCurrencyCacheKeyPrefix = "kucoinpay::onchain_currency::v1"

type OnchainCurrencyRequest struct {
	CryptoCurrency string `json:"cryptoCurrency"`
}

type OnchainQuoteRequest struct {
	FiatCurrency   string          `json:"fiatCurrency"`
	FiatAmount     decimal.Decimal `json:"fiatAmount"`
	CryptoCurrency string          `json:"cryptoCurrency"`
	Chain          string          `json:"chain"`
}

type CreateOnchainOrderRequest struct {
	RequestID      string           `json:"requestId"`
	SubMerchantID  string           `json:"subMerchantId,omitempty"`
	FiatCurrency   string           `json:"fiatCurrency,omitempty"`
	FiatAmount     *decimal.Decimal `json:"fiatAmount,omitempty"`
	CryptoCurrency string           `json:"cryptoCurrency"`
	CryptoAmount   decimal.Decimal  `json:"cryptoAmount"`
	Chain          string           `json:"chain"`
	Reference      string           `json:"reference,omitempty"`
	Goods          json.RawMessage  `json:"goods"`
}

type QueryOnchainOrderRequest struct {
	PayOrderID string `json:"payOrderId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

type CreateOnchainRefundRequest struct {
	RequestID     string          `json:"requestId"`
	SubMerchantID string          `json:"subMerchantId,omitempty"`
	PayOrderID    string          `json:"payOrderId"`
	RefundAmount  decimal.Decimal `json:"refundAmount"`
	Chain         string          `json:"chain"`
	Address       string          `json:"address"`
	RefundReason  string          `json:"refundReason,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

// OnchainCurrencyCacheKey is the cache key for one currency list lookup.
func OnchainCurrencyCacheKey(cryptoCurrency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(cryptoCurrency))
	return onchainCurrencyCacheKeyPrefix + "::" + url.PathEscape(normalized)
}

func (s *Service) QueryOnchainCurrencies(ctx context.Context, req OnchainCurrencyRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"crypto_currency": req.CryptoCurrency}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_onchain_currencies", err, fields)
	}()

	cryptoCurrency := strings.TrimSpace(req.CryptoCurrency)
	checks := fieldChecks{}
	checks.require("cryptoCurrency", cryptoCurrency != "")
	if err = checks.err(string(canonical.OnchainCurrencyQuery)); err != nil {
		return ProviderResult{}, err
	}

	fetch := func(ctx context.Context) (ProviderResult, error) {
		return s.invoke(ctx, OutboundCall{
			Operation: canonical.OnchainCurrencyQuery,
			Fields:    canonical.Fields{"cryptoCurrency": cryptoCurrency},
			Body:      map[string]any{"cryptoCurrency": cryptoCurrency},
		})
	}
	if s.currencyCache == nil {
		result, err = fetch(ctx)
		return result, err
	}
	fields["cached"] = true
	result, err = repositorycache.GetOrFetch(ctx, s.currencyCache, OnchainCurrencyCacheKey(cryptoCurrency), fetch)
	return result, err
}

func (s *Service) QueryOnchainQuote(ctx context.Context, req OnchainQuoteRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"crypto_currency": req.CryptoCurrency, "chain": req.Chain}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_onchain_quote", err, fields)
	}()

	checks := fieldChecks{}
	checks.require("fiatCurrency", strings.TrimSpace(req.FiatCurrency) != "")
	checks.require("fiatAmount", !req.FiatAmount.IsZero())
	if req.FiatAmount.IsNegative() {
		checks.fail("fiatAmount", "must be positive")
	}
	checks.require("cryptoCurrency", strings.TrimSpace(req.CryptoCurrency) != "")
	checks.require("chain", strings.TrimSpace(req.Chain) != "")
	if err = checks.err(string(canonical.OnchainQuote)); err != nil {
		return ProviderResult{}, err
	}

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OnchainQuote,
		Fields: canonical.Fields{
			"chain":          strings.TrimSpace(req.Chain),
			"cryptoCurrency": strings.TrimSpace(req.CryptoCurrency),
			"fiatAmount":     req.FiatAmount,
			"fiatCurrency":   strings.TrimSpace(req.FiatCurrency),
		},
		Body: map[string]any{
			"fiatCurrency":   strings.TrimSpace(req.FiatCurrency),
			"fiatAmount":     decimalNumber(req.FiatAmount),
			"cryptoCurrency": strings.TrimSpace(req.CryptoCurrency),
			"chain":          strings.TrimSpace(req.Chain),
		},
	})
	return result, err
}

func (s *Service) CreateOnchainOrder(ctx context.Context, req CreateOnchainOrderRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "chain": req.Chain}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_onchain_order", err, fields)
	}()

	requestID := strings.TrimSpace(req.RequestID)
	checks := fieldChecks{}
	checks.require("requestId", requestID != "")
	checks.require("cryptoCurrency", strings.TrimSpace(req.CryptoCurrency) != "")
	checks.require("cryptoAmount", !req.CryptoAmount.IsZero())
	if req.CryptoAmount.IsNegative() {
		checks.fail("cryptoAmount", "must be positive")
	}
	checks.require("chain", strings.TrimSpace(req.Chain) != "")
	checks.require("goods", hasJSONContent(req.Goods))
	if req.FiatAmount != nil && req.FiatAmount.IsNegative() {
		checks.fail("fiatAmount", "must not be negative")
	}
	if err = checks.err(string(canonical.OnchainOrderCreate)); err != nil {
		return ProviderResult{}, err
	}

	body := map[string]any{
		"requestId":      requestID,
		"cryptoCurrency": strings.TrimSpace(req.CryptoCurrency),
		"cryptoAmount":   decimalNumber(req.CryptoAmount),
		"chain":          strings.TrimSpace(req.Chain),
		"goods":          req.Goods,
	}
	putOptional(body, "subMerchantId", req.SubMerchantID)
	putOptional(body, "fiatCurrency", req.FiatCurrency)
	putOptional(body, "reference", req.Reference)
	if req.FiatAmount != nil {
		body["fiatAmount"] = decimalNumber(*req.FiatAmount)
	}

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OnchainOrderCreate,
		Fields: canonical.Fields{
			"chain":          strings.TrimSpace(req.Chain),
			"cryptoAmount":   req.CryptoAmount,
			"cryptoCurrency": strings.TrimSpace(req.CryptoCurrency),
			"fiatAmount":     req.FiatAmount,
			"fiatCurrency":   strings.TrimSpace(req.FiatCurrency),
			"requestId":      requestID,
			"subMerchantId":  strings.TrimSpace(req.SubMerchantID),
		},
		Body: body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	fields["pay_order_id"] = data.String("payOrderId")
	err = s.persist(string(canonical.OnchainOrderCreate), s.onchainOrderStore != nil, func() error {
		cryptoAmount := req.CryptoAmount
		status := firstNonEmpty(data.String("status"), OrderStatusCreated)
		_, upsertErr := s.onchainOrderStore.UpsertOnchainOrder(ctx, OnchainOrderUpsert{
			Key:             OnchainOrderKey{RequestID: requestID, PayOrderID: data.String("payOrderId")},
			CreateIfMissing: true,
			SubMerchantID:   StringValue(req.SubMerchantID),
			FiatCurrency:    StringValue(req.FiatCurrency),
			FiatAmount:      req.FiatAmount,
			CryptoCurrency:  StringValue(req.CryptoCurrency),
			CryptoAmount:    &cryptoAmount,
			Chain:           StringValue(req.Chain),
			Reference:       StringValue(req.Reference),
			WalletAddress:   StringValue(data.String("address")),
			ExpireTime:      Int64Value(data.Int64("expireTime")),
			Status:          &status,
			Goods:           req.Goods,
		})
		return upsertErr
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) QueryOnchainOrder(ctx context.Context, req QueryOnchainOrderRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "pay_order_id": req.PayOrderID}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_onchain_order", err, fields)
	}()

	payOrderID := strings.TrimSpace(req.PayOrderID)
	requestID := strings.TrimSpace(req.RequestID)
	if payOrderID == "" && requestID == "" {
		checks := fieldChecks{}
		checks.fail("requestId", "requestId or payOrderId is required")
		err = checks.err(string(canonical.OnchainOrderQuery))
		return ProviderResult{}, err
	}

	body := map[string]any{}
	putOptional(body, "requestId", requestID)
	putOptional(body, "payOrderId", payOrderID)
	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OnchainOrderQuery,
		Fields:    canonical.Fields{"payOrderId": payOrderID, "requestId": requestID},
		Body:      body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	if data == nil {
		return result, nil
	}
	err = s.persist(string(canonical.OnchainOrderQuery), s.onchainOrderStore != nil, func() error {
		upsert := onchainOrderUpsertFromData(data, false)
		if upsert.Key.RequestID == "" {
			upsert.Key.RequestID = requestID
		}
		if upsert.Key.PayOrderID == "" {
			upsert.Key.PayOrderID = payOrderID
		}
		_, upsertErr := s.onchainOrderStore.UpsertOnchainOrder(ctx, upsert)
		return ignoreNotFound(upsertErr)
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) CreateOnchainRefund(ctx context.Context, req CreateOnchainRefundRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "pay_order_id": req.PayOrderID}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_onchain_refund", err, fields)
	}()

	requestID := canonical.Strip(req.RequestID)
	payOrderID := canonical.Strip(req.PayOrderID)
	chain := canonical.Strip(req.Chain)
	address := canonical.Strip(req.Address)
	subMerchantID := canonical.Strip(req.SubMerchantID)

	checks := fieldChecks{}
	checks.require("requestId", requestID != "")
	checks.require("payOrderId", payOrderID != "")
	checks.require("refundAmount", !req.RefundAmount.IsZero())
	if req.RefundAmount.IsNegative() {
		checks.fail("refundAmount", "must be positive")
	}
	checks.require("chain", chain != "")
	checks.require("address", address != "")
	if err = checks.err(string(canonical.OnchainRefundCreate)); err != nil {
		return ProviderResult{}, err
	}

	body := map[string]any{
		"requestId":    requestID,
		"payOrderId":   payOrderID,
		"refundAmount": decimalNumber(req.RefundAmount),
		"chain":        chain,
		"address":      address,
	}
	putOptional(body, "subMerchantId", subMerchantID)
	putOptional(body, "refundReason", req.RefundReason)
	putOptional(body, "reference", req.Reference)

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OnchainRefundCreate,
		Fields: canonical.Fields{
			"address":       address,
			"chain":         chain,
			"payOrderId":    payOrderID,
			"refundAmount":  req.RefundAmount,
			"requestId":     requestID,
			"subMerchantId": subMerchantID,
		},
		Body: body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	fields["refund_id"] = data.String("refundId")
	err = s.persist(string(canonical.OnchainRefundCreate), s.refundStore != nil, func() error {
		amount := req.RefundAmount
		status := firstNonEmpty(data.String("status"), RefundStatusProcessing)
		_, upsertErr := s.refundStore.UpsertRefund(ctx, RefundUpsert{
			Key:             RefundKey{RefundID: data.String("refundId"), RequestID: requestID},
			CreateIfMissing: true,
			Kind:            RefundKindOnchain,
			PayOrderID:      &payOrderID,
			SubMerchantID:   StringValue(subMerchantID),
			RefundAmount:    &amount,
			RefundReason:    StringValue(req.RefundReason),
			Reference:       StringValue(req.Reference),
			Chain:           &chain,
			Address:         &address,
			Status:          &status,
		})
		return upsertErr
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) QueryOnchainRefund(ctx context.Context, req QueryRefundRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "refund_id": req.RefundID}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_onchain_refund", err, fields)
	}()

	result, err = s.queryRefund(ctx, canonical.OnchainRefundQuery, RefundKindOnchain, req)
	return result, err
}

func (s *Service) ListOnchainRefunds(ctx context.Context, req ListRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"start_time": req.StartTime, "end_time": req.EndTime}
	defer func() {
		s.observeOperation(ctx, startedAt, "list_onchain_refunds", err, fields)
	}()

	result, err = s.listRefunds(ctx, canonical.OnchainRefundList, RefundKindOnchain, req)
	if err == nil {
		fields["items"] = len(result.Items())
	}
	return result, err
}

func onchainOrderUpsertFromData(data ProviderData, createIfMissing bool) OnchainOrderUpsert {
	upsert := OnchainOrderUpsert{
		Key: OnchainOrderKey{
			RequestID:  data.String("requestId"),
			PayOrderID: data.String("payOrderId"),
		},
		CreateIfMissing: createIfMissing,
		SubMerchantID:   StringValue(data.String("subMerchantId")),
		FiatCurrency:    StringValue(data.String("fiatCurrency")),
		CryptoCurrency:  StringValue(firstNonEmpty(data.String("cryptoCurrency"), data.String("currency"))),
		Chain:           StringValue(data.String("chain")),
		Reference:       StringValue(data.String("reference")),
		WalletAddress:   StringValue(data.String("address")),
		Status:          StringValue(data.String("status")),
		PaymentStatus:   StringValue(data.String("paymentStatus")),
		PaymentCurrency: StringValue(data.String("paymentCurrency")),
		AssetUniqueID:   StringValue(data.String("assetUniqueId")),
	}
	upsert.FiatAmount = DecimalValue(data.Decimal("fiatAmount"))
	upsert.CryptoAmount = DecimalValue(data.Decimal("cryptoAmount"))
	upsert.PaymentAmount = DecimalValue(data.Decimal("paymentAmount"))
	upsert.ExpireTime = Int64Value(data.Int64("expireTime"))
	return upsert
}
