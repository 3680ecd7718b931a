package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	RequestID     string          `json:"requestId,omitempty"`
	OrderAmount   decimal.Decimal `json:"orderAmount"`
	OrderCurrency string          `json:"orderCurrency"`
	Reference     string          `json:"reference,omitempty"`
	Source        string          `json:"source,omitempty"`
	SubMerchantID string          `json:"subMerchantId,omitempty"`
	ExpireTime    int64           `json:"expireTime,omitempty"`
	Goods         json.RawMessage `json:"goods"`
	ReturnURL     string          `json:"returnUrl"`
	CancelURL     string          `json:"cancelUrl"`
}

type QueryOrderRequest struct {
	PayOrderID string `json:"payOrderId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

type CloseOrderRequest struct {
	RequestID string `json:"requestId"`
}

// ListRequest is shared by the order, refund and on-chain refund lists.
type ListRequest struct {
	StartTime  int64    `json:"startTime"`
	EndTime    int64    `json:"endTime"`
	PageNum    int      `json:"pageNum,omitempty"`
	PageSize   int      `json:"pageSize,omitempty"`
	Status     string   `json:"status,omitempty"`
	RequestIDs []string `json:"requestIds,omitempty"`
	OrderIDs   []string `json:"orderIds,omitempty"`
	RefundIDs  []string `json:"refundIds,omitempty"`
}

func (r ListRequest) validate(operation string) error {
	checks := fieldChecks{}
	checks.require("startTime", r.StartTime > 0)
	checks.require("endTime", r.EndTime > 0)
	if r.StartTime > 0 && r.EndTime > 0 && r.EndTime < r.StartTime {
		checks.fail("endTime", "must not be before startTime")
	}
	if r.PageNum < 0 {
		checks.fail("pageNum", "must not be negative")
	}
	if r.PageSize < 0 {
		checks.fail("pageSize", "must not be negative")
	}
	return checks.err(operation)
}

func (r ListRequest) fields() canonical.Fields {
	return canonical.Fields{
		"startTime": r.StartTime,
		"endTime":   r.EndTime,
	}
}

func (r ListRequest) body() map[string]any {
	pageNum := r.PageNum
	if pageNum <= 0 {
		pageNum = DefaultPageNum
	}
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	body := map[string]any{
		"pageNum":   pageNum,
		"pageSize":  pageSize,
		"startTime": r.StartTime,
		"endTime":   r.EndTime,
	}
	if status := strings.TrimSpace(r.Status); status != "" {
		body["status"] = status
	}
	if len(r.RequestIDs) > 0 {
		body["requestIds"] = append([]string(nil), r.RequestIDs...)
	}
	if len(r.OrderIDs) > 0 {
		body["orderIds"] = append([]string(nil), r.OrderIDs...)
	}
	if len(r.RefundIDs) > 0 {
		body["refundIds"] = append([]string(nil), r.RefundIDs...)
	}
	return body
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_order", err, fields)
	}()

	checks := fieldChecks{}
	checks.require("orderAmount", !req.OrderAmount.IsZero())
	if req.OrderAmount.IsNegative() {
		checks.fail("orderAmount", "must be positive")
	}
	checks.require("orderCurrency", strings.TrimSpace(req.OrderCurrency) != "")
	checks.require("goods", hasJSONContent(req.Goods))
	checks.require("returnUrl", strings.TrimSpace(req.ReturnURL) != "")
	checks.require("cancelUrl", strings.TrimSpace(req.CancelURL) != "")
	if err = checks.err(string(canonical.OrderCreate)); err != nil {
		return ProviderResult{}, err
	}

	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		requestID = s.requestIDs()
	}
	fields["request_id"] = requestID
	expireTime := req.ExpireTime
	if expireTime <= 0 {
		expireTime = s.config.Orders.ExpireTimeMS
	}
	reference := firstNonEmpty(req.Reference, s.config.Orders.Reference)
	source := firstNonEmpty(req.Source, s.config.Orders.Source)
	subMerchantID := strings.TrimSpace(req.SubMerchantID)

	body := map[string]any{
		"expireTime":    expireTime,
		"goods":         req.Goods,
		"orderAmount":   decimalNumber(req.OrderAmount),
		"orderCurrency": req.OrderCurrency,
		"reference":     reference,
		"requestId":     requestID,
		"returnUrl":     req.ReturnURL,
		"cancelUrl":     req.CancelURL,
		"source":        source,
	}
	if subMerchantID != "" {
		body["subMerchantId"] = subMerchantID
	}

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OrderCreate,
		Fields: canonical.Fields{
			"expireTime":    expireTime,
			"orderAmount":   req.OrderAmount,
			"orderCurrency": req.OrderCurrency,
			"reference":     reference,
			"requestId":     requestID,
			"source":        source,
			"subMerchantId": subMerchantID,
		},
		Body: body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	fields["pay_order_id"] = data.String("payOrderId")
	amount := req.OrderAmount
	status := OrderStatusCreated
	err = s.persist(string(canonical.OrderCreate), s.orderStore != nil, func() error {
		_, upsertErr := s.orderStore.UpsertOrder(ctx, OrderUpsert{
			Key:             OrderKey{PayOrderID: data.String("payOrderId"), RequestID: requestID},
			CreateIfMissing: true,
			OrderAmount:     &amount,
			OrderCurrency:   StringValue(req.OrderCurrency),
			Reference:       StringValue(reference),
			Source:          StringValue(source),
			SubMerchantID:   StringValue(subMerchantID),
			ExpireTime:      &expireTime,
			QRCodeURL:       StringValue(data.String("qrcode")),
			AppPayURL:       StringValue(data.String("appPayUrl")),
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

func (s *Service) QueryOrder(ctx context.Context, req QueryOrderRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "pay_order_id": req.PayOrderID}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_order", err, fields)
	}()

	payOrderID := strings.TrimSpace(req.PayOrderID)
	requestID := strings.TrimSpace(req.RequestID)
	if payOrderID == "" && requestID == "" {
		checks := fieldChecks{}
		checks.fail("payOrderId", "payOrderId or requestId is required")
		err = checks.err(string(canonical.OrderQuery))
		return ProviderResult{}, err
	}

	body := map[string]any{}
	if payOrderID != "" {
		body["payOrderId"] = payOrderID
	}
	if requestID != "" {
		body["requestId"] = requestID
	}
	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OrderQuery,
		Fields:    canonical.Fields{"payOrderId": payOrderID, "requestId": requestID},
		Body:      body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	if data.String("payOrderId") == "" && data.String("requestId") == "" {
		return result, nil
	}
	err = s.persist(string(canonical.OrderQuery), s.orderStore != nil, func() error {
		upsert := orderUpsertFromData(data, false)
		if upsert.Key.PayOrderID == "" {
			upsert.Key.PayOrderID = payOrderID
		}
		if upsert.Key.RequestID == "" {
			upsert.Key.RequestID = requestID
		}
		_, upsertErr := s.orderStore.UpsertOrder(ctx, upsert)
		return ignoreNotFound(upsertErr)
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, req ListRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"start_time": req.StartTime, "end_time": req.EndTime}
	defer func() {
		s.observeOperation(ctx, startedAt, "list_orders", err, fields)
	}()

	if err = req.validate(string(canonical.OrderList)); err != nil {
		return ProviderResult{}, err
	}
	body := req.body()
	delete(body, "refundIds")
	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OrderList,
		Fields:    req.fields(),
		Body:      body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	items := result.Items()
	fields["items"] = len(items)
	err = s.persist(string(canonical.OrderList), s.orderStore != nil, func() error {
		for _, item := range items {
			if item.String("requestId") == "" && item.String("payOrderId") == "" {
				continue
			}
			if _, upsertErr := s.orderStore.UpsertOrder(ctx, orderUpsertFromData(item, true)); upsertErr != nil {
				return upsertErr
			}
		}
		return nil
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) CloseOrder(ctx context.Context, req CloseOrderRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID}
	defer func() {
		s.observeOperation(ctx, startedAt, "close_order", err, fields)
	}()

	requestID := strings.TrimSpace(req.RequestID)
	checks := fieldChecks{}
	checks.require("requestId", requestID != "")
	if err = checks.err(string(canonical.OrderClose)); err != nil {
		return ProviderResult{}, err
	}

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.OrderClose,
		Fields:    canonical.Fields{"requestId": requestID},
		Body:      map[string]any{"requestId": requestID},
	})
	if err != nil {
		return ProviderResult{}, err
	}

	status := OrderStatusClosed
	err = s.persist(string(canonical.OrderClose), s.orderStore != nil, func() error {
		_, upsertErr := s.orderStore.UpsertOrder(ctx, OrderUpsert{
			Key:    OrderKey{RequestID: requestID},
			Status: &status,
		})
		return ignoreNotFound(upsertErr)
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

// orderUpsertFromData maps a provider order object onto an upsert.
func orderUpsertFromData(data ProviderData, createIfMissing bool) OrderUpsert {
	upsert := OrderUpsert{
		Key: OrderKey{
			PayOrderID: data.String("payOrderId"),
			RequestID:  data.String("requestId"),
		},
		CreateIfMissing: createIfMissing,
		OrderCurrency:   StringValue(data.String("orderCurrency")),
		Reference:       StringValue(data.String("reference")),
		SubMerchantID:   StringValue(data.String("subMerchantId")),
		Status:          StringValue(data.String("status")),
		RefundCurrency:  StringValue(data.String("refundCurrency")),
		ErrorReason:     StringValue(data.String("errorReason")),
		PayerUserID:     StringValue(data.String("payerUserId")),
		Goods:           data.Raw("goods"),
	}
	upsert.OrderAmount = DecimalValue(data.Decimal("orderAmount"))
	upsert.CanRefundAmount = DecimalValue(data.Decimal("canRefundAmount"))
	upsert.PayTime = Int64Value(data.Int64("payTime"))
	upsert.ExpireTime = Int64Value(data.Int64("expireTime"))
	upsert.RetrieveKYCStatus = BoolValue(data.Bool("retrieveKycStatus"))
	return upsert
}

func decimalNumber(value decimal.Decimal) json.Number {
	return json.Number(value.String())
}

func hasJSONContent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "null", "[]", "{}", `""`:
		return false
	default:
		return true
	}
}
