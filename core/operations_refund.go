package core

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
	"github.com/shopspring/decimal"
)

type CreateRefundRequest struct {
	PayID         string          `json:"payID"`
	RefundAmount  decimal.Decimal `json:"refundAmount"`
	RefundReason  string          `json:"refundReason,omitempty"`
	RequestID     string          `json:"requestId"`
	SubMerchantID string          `json:"subMerchantId,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

type QueryRefundRequest struct {
	RefundID  string `json:"refundId,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Service) CreateRefund(ctx context.Context, req CreateRefundRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "pay_order_id": req.PayID}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_refund", err, fields)
	}()

	payID := strings.TrimSpace(req.PayID)
	requestID := strings.TrimSpace(req.RequestID)
	checks := fieldChecks{}
	checks.require("payID", payID != "")
	checks.require("refundAmount", !req.RefundAmount.IsZero())
	if req.RefundAmount.IsNegative() {
		checks.fail("refundAmount", "must be positive")
	}
	checks.require("requestId", requestID != "")
	if err = checks.err(string(canonical.RefundCreate)); err != nil {
		return ProviderResult{}, err
	}

	body := map[string]any{
		"payID":        payID,
		"refundAmount": decimalNumber(req.RefundAmount),
		"requestId":    requestID,
	}
	putOptional(body, "refundReason", req.RefundReason)
	putOptional(body, "subMerchantId", req.SubMerchantID)
	putOptional(body, "reference", req.Reference)

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.RefundCreate,
		Fields: canonical.Fields{
			"payID":         payID,
			"refundAmount":  req.RefundAmount,
			"refundReason":  strings.TrimSpace(req.RefundReason),
			"requestId":     requestID,
			"subMerchantId": strings.TrimSpace(req.SubMerchantID),
		},
		Body: body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	fields["refund_id"] = data.String("refundId")
	amount := req.RefundAmount
	status := firstNonEmpty(data.String("status"), RefundStatusProcessing)
	err = s.persist(string(canonical.RefundCreate), s.refundStore != nil, func() error {
		_, upsertErr := s.refundStore.UpsertRefund(ctx, RefundUpsert{
			Key:             RefundKey{RefundID: data.String("refundId"), RequestID: requestID},
			CreateIfMissing: true,
			Kind:            RefundKindTrade,
			PayOrderID:      &payID,
			RefundAmount:    &amount,
			RefundReason:    StringValue(req.RefundReason),
			SubMerchantID:   StringValue(req.SubMerchantID),
			Reference:       StringValue(req.Reference),
			Status:          &status,
		})
		return upsertErr
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) QueryRefund(ctx context.Context, req QueryRefundRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "refund_id": req.RefundID}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_refund", err, fields)
	}()

	result, err = s.queryRefund(ctx, canonical.RefundQuery, RefundKindTrade, req)
	return result, err
}

func (s *Service) ListRefunds(ctx context.Context, req ListRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"start_time": req.StartTime, "end_time": req.EndTime}
	defer func() {
		s.observeOperation(ctx, startedAt, "list_refunds", err, fields)
	}()

	result, err = s.listRefunds(ctx, canonical.RefundList, RefundKindTrade, req)
	if err == nil {
		fields["items"] = len(result.Items())
	}
	return result, err
}

// queryRefund serves both trade and on-chain refund lookups; they share a
// field set and differ in path and stored kind.
func (s *Service) queryRefund(ctx context.Context, op canonical.Operation, kind string, req QueryRefundRequest) (ProviderResult, error) {
	refundID := strings.TrimSpace(req.RefundID)
	requestID := strings.TrimSpace(req.RequestID)
	if refundID == "" && requestID == "" {
		checks := fieldChecks{}
		checks.fail("refundId", "refundId or requestId is required")
		return ProviderResult{}, checks.err(string(op))
	}

	body := map[string]any{}
	putOptional(body, "refundId", refundID)
	putOptional(body, "requestId", requestID)
	result, err := s.invoke(ctx, OutboundCall{
		Operation: op,
		Fields:    canonical.Fields{"refundId": refundID, "requestId": requestID},
		Body:      body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	if data.String("refundId") == "" && data.String("requestId") == "" {
		return result, nil
	}
	err = s.persist(string(op), s.refundStore != nil, func() error {
		upsert := refundUpsertFromData(data, kind, true)
		if upsert.Key.RefundID == "" {
			upsert.Key.RefundID = refundID
		}
		if upsert.Key.RequestID == "" {
			upsert.Key.RequestID = requestID
		}
		_, upsertErr := s.refundStore.UpsertRefund(ctx, upsert)
		return ignoreNotFound(upsertErr)
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) listRefunds(ctx context.Context, op canonical.Operation, kind string, req ListRequest) (ProviderResult, error) {
	if err := req.validate(string(op)); err != nil {
		return ProviderResult{}, err
	}
	body := req.body()
	delete(body, "orderIds")
	result, err := s.invoke(ctx, OutboundCall{
		Operation: op,
		Fields:    req.fields(),
		Body:      body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	items := result.Items()
	err = s.persist(string(op), s.refundStore != nil, func() error {
		for _, item := range items {
			if item.String("refundId") == "" && item.String("requestId") == "" {
				continue
			}
			if _, upsertErr := s.refundStore.UpsertRefund(ctx, refundUpsertFromData(item, kind, true)); upsertErr != nil {
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

func refundUpsertFromData(data ProviderData, kind string, createIfMissing bool) RefundUpsert {
	upsert := RefundUpsert{
		Key: RefundKey{
			RefundID:  data.String("refundId"),
			RequestID: data.String("requestId"),
		},
		CreateIfMissing:         createIfMissing,
		Kind:                    kind,
		PayOrderID:              StringValue(firstNonEmpty(data.String("payID"), data.String("payOrderId"))),
		MerchantID:              StringValue(data.String("merchantId")),
		SubMerchantID:           StringValue(data.String("subMerchantId")),
		RefundCurrency:          StringValue(data.String("refundCurrency")),
		RemainingRefundCurrency: StringValue(data.String("remainingRefundCurrency")),
		RefundReason:            StringValue(data.String("refundReason")),
		Reference:               StringValue(data.String("reference")),
		Status:                  StringValue(data.String("status")),
		Chain:                   StringValue(data.String("chain")),
		Address:                 StringValue(data.String("address")),
		AssetUniqueID:           StringValue(data.String("assetUniqueId")),
	}
	upsert.RefundAmount = DecimalValue(data.Decimal("refundAmount"))
	upsert.RemainingRefundAmount = DecimalValue(data.Decimal("remainingRefundAmount"))
	upsert.FeeAmount = DecimalValue(data.Decimal("feeAmount"))
	upsert.RefundFinishTime = Int64Value(data.Int64("refundFinishTime"))
	return upsert
}

func putOptional(body map[string]any, key string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		body[key] = trimmed
	}
}
