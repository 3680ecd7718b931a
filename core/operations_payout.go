package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
	"github.com/shopspring/decimal"
)

type PayoutDetailRequest struct {
	DetailID        string          `json:"detailId"`
	ReceiverUID     string          `json:"receiverUID,omitempty"`
	ReceiverAddress string          `json:"receiverAddress,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Remark          string          `json:"remark,omitempty"`
}

type CreatePayoutRequest struct {
	RequestID             string                `json:"requestId"`
	BizScene              string                `json:"bizScene,omitempty"`
	PayoutType            string                `json:"payoutType"`
	BatchName             string                `json:"batchName"`
	Currency              string                `json:"currency"`
	Chain                 string                `json:"chain,omitempty"`
	TotalAmount           decimal.Decimal       `json:"totalAmount"`
	TotalCount            int64                 `json:"totalCount"`
	WithdrawDetailDtoList []PayoutDetailRequest `json:"withdrawDetailDtoList"`
}

type QueryPayoutInfoRequest struct {
	BatchNo   string `json:"batchNo,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type QueryPayoutDetailRequest struct {
	RequestID       string `json:"requestId"`
	ReceiverUID     string `json:"receiverUID,omitempty"`
	ReceiverAddress string `json:"receiverAddress,omitempty"`
}

func (r CreatePayoutRequest) validate() error {
	checks := fieldChecks{}
	checks.require("requestId", strings.TrimSpace(r.RequestID) != "")
	checks.require("batchName", strings.TrimSpace(r.BatchName) != "")
	checks.require("currency", strings.TrimSpace(r.Currency) != "")
	switch strings.TrimSpace(r.PayoutType) {
	case PayoutTypeOnChain:
		checks.require("chain", strings.TrimSpace(r.Chain) != "")
	case PayoutTypeOffChain:
	case "":
		checks.require("payoutType", false)
	default:
		checks.fail("payoutType", "must be onChain or offChain")
	}
	checks.require("totalAmount", !r.TotalAmount.IsZero())
	if r.TotalAmount.IsNegative() {
		checks.fail("totalAmount", "must be positive")
	}
	checks.require("totalCount", r.TotalCount != 0)
	if len(r.WithdrawDetailDtoList) == 0 {
		checks.fail("withdrawDetailDtoList", "must contain at least 1 item")
	} else if r.TotalCount != int64(len(r.WithdrawDetailDtoList)) {
		checks.fail("totalCount", "must equal the number of withdraw details")
	}
	seen := map[string]bool{}
	for i, detail := range r.WithdrawDetailDtoList {
		prefix := fmt.Sprintf("withdrawDetailDtoList[%d].", i)
		detailID := strings.TrimSpace(detail.DetailID)
		checks.require(prefix+"detailId", detailID != "")
		if detailID != "" && seen[detailID] {
			checks.fail(prefix+"detailId", "must be unique")
		}
		seen[detailID] = true
		if !detail.Amount.IsPositive() {
			checks.fail(prefix+"amount", "must be positive")
		}
		if strings.TrimSpace(detail.ReceiverUID) == "" && strings.TrimSpace(detail.ReceiverAddress) == "" {
			checks.fail(prefix+"receiverUID", "receiverUID or receiverAddress is required")
		}
	}
	return checks.err(string(canonical.PayoutCreate))
}

func (s *Service) CreatePayout(ctx context.Context, req CreatePayoutRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "payout_type": req.PayoutType}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_payout", err, fields)
	}()

	if err = req.validate(); err != nil {
		return ProviderResult{}, err
	}
	requestID := strings.TrimSpace(req.RequestID)
	payoutType := strings.TrimSpace(req.PayoutType)
	chain := ""
	if payoutType == PayoutTypeOnChain {
		chain = strings.TrimSpace(req.Chain)
	}

	details := make([]map[string]any, 0, len(req.WithdrawDetailDtoList))
	for _, detail := range req.WithdrawDetailDtoList {
		entry := map[string]any{
			"detailId": strings.TrimSpace(detail.DetailID),
			"amount":   decimalNumber(detail.Amount),
		}
		putOptional(entry, "receiverUID", detail.ReceiverUID)
		putOptional(entry, "receiverAddress", detail.ReceiverAddress)
		putOptional(entry, "remark", detail.Remark)
		details = append(details, entry)
	}
	body := map[string]any{
		"requestId":             requestID,
		"payoutType":            payoutType,
		"batchName":             req.BatchName,
		"currency":              req.Currency,
		"totalAmount":           decimalNumber(req.TotalAmount),
		"totalCount":            req.TotalCount,
		"withdrawDetailDtoList": details,
	}
	putOptional(body, "bizScene", req.BizScene)
	putOptional(body, "chain", chain)

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.PayoutCreate,
		Fields: canonical.Fields{
			"batchName":   req.BatchName,
			"bizScene":    strings.TrimSpace(req.BizScene),
			"chain":       chain,
			"currency":    req.Currency,
			"payoutType":  payoutType,
			"requestId":   requestID,
			"totalAmount": req.TotalAmount,
			"totalCount":  req.TotalCount,
		},
		Body: body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	fields["batch_no"] = data.String("batchNo")
	err = s.persist(string(canonical.PayoutCreate), s.payoutStore != nil, func() error {
		status := firstNonEmpty(data.String("status"), PayoutStatusProcessing)
		totalAmount := req.TotalAmount
		totalCount := req.TotalCount
		upsert := PayoutUpsert{
			Key:             PayoutKey{RequestID: requestID, BatchNo: data.String("batchNo")},
			CreateIfMissing: true,
			BatchName:       StringValue(req.BatchName),
			BizScene:        StringValue(req.BizScene),
			PayoutType:      &payoutType,
			Currency:        StringValue(req.Currency),
			Chain:           StringValue(chain),
			TotalAmount:     &totalAmount,
			TotalCount:      &totalCount,
			Status:          &status,
		}
		pending := PayoutDetailStatusPending
		for _, detail := range req.WithdrawDetailDtoList {
			amount := detail.Amount
			upsert.Details = append(upsert.Details, PayoutDetailUpsert{
				DetailID:        strings.TrimSpace(detail.DetailID),
				ReceiverUID:     StringValue(detail.ReceiverUID),
				ReceiverAddress: StringValue(detail.ReceiverAddress),
				Amount:          &amount,
				Remark:          StringValue(detail.Remark),
				Status:          &pending,
			})
		}
		_, upsertErr := s.payoutStore.UpsertPayout(ctx, upsert)
		return upsertErr
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) QueryPayoutInfo(ctx context.Context, req QueryPayoutInfoRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID, "batch_no": req.BatchNo}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_payout_info", err, fields)
	}()

	batchNo := strings.TrimSpace(req.BatchNo)
	requestID := strings.TrimSpace(req.RequestID)
	if batchNo == "" && requestID == "" {
		checks := fieldChecks{}
		checks.fail("batchNo", "batchNo or requestId is required")
		err = checks.err(string(canonical.PayoutInfo))
		return ProviderResult{}, err
	}

	body := map[string]any{}
	putOptional(body, "batchNo", batchNo)
	putOptional(body, "requestId", requestID)
	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.PayoutInfo,
		Fields:    canonical.Fields{"batchNo": batchNo, "requestId": requestID},
		Body:      body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	data := result.Object()
	if data == nil {
		return result, nil
	}
	err = s.persist(string(canonical.PayoutInfo), s.payoutStore != nil, func() error {
		upsert := payoutUpsertFromData(data, false)
		if upsert.Key.RequestID == "" {
			upsert.Key.RequestID = requestID
		}
		if upsert.Key.BatchNo == "" {
			upsert.Key.BatchNo = batchNo
		}
		_, upsertErr := s.payoutStore.UpsertPayout(ctx, upsert)
		return ignoreNotFound(upsertErr)
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func (s *Service) QueryPayoutDetail(ctx context.Context, req QueryPayoutDetailRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_id": req.RequestID}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_payout_detail", err, fields)
	}()

	requestID := strings.TrimSpace(req.RequestID)
	receiverUID := strings.TrimSpace(req.ReceiverUID)
	receiverAddress := strings.TrimSpace(req.ReceiverAddress)
	checks := fieldChecks{}
	checks.require("requestId", requestID != "")
	if receiverUID == "" && receiverAddress == "" {
		checks.fail("receiverUID", "receiverUID or receiverAddress is required")
	}
	if err = checks.err(string(canonical.PayoutDetail)); err != nil {
		return ProviderResult{}, err
	}

	body := map[string]any{"requestId": requestID}
	putOptional(body, "receiverUID", receiverUID)
	putOptional(body, "receiverAddress", receiverAddress)
	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.PayoutDetail,
		Fields: canonical.Fields{
			"receiverAddress": receiverAddress,
			"receiverUID":     receiverUID,
			"requestId":       requestID,
		},
		Body: body,
	})
	if err != nil {
		return ProviderResult{}, err
	}

	items := result.Items()
	if object := result.Object(); items == nil && object.String("detailId") != "" {
		items = []ProviderData{object}
	}
	fields["items"] = len(items)
	err = s.persist(string(canonical.PayoutDetail), s.payoutStore != nil, func() error {
		upsert := PayoutUpsert{Key: PayoutKey{RequestID: requestID}}
		for _, item := range items {
			if item.String("detailId") == "" {
				continue
			}
			upsert.Details = append(upsert.Details, payoutDetailUpsertFromData(item))
		}
		if len(upsert.Details) == 0 {
			return nil
		}
		_, upsertErr := s.payoutStore.UpsertPayout(ctx, upsert)
		return ignoreNotFound(upsertErr)
	})
	if err != nil {
		return ProviderResult{}, err
	}
	return result, nil
}

func payoutUpsertFromData(data ProviderData, createIfMissing bool) PayoutUpsert {
	upsert := PayoutUpsert{
		Key: PayoutKey{
			RequestID: data.String("requestId"),
			BatchNo:   data.String("batchNo"),
		},
		CreateIfMissing: createIfMissing,
		BatchName:       StringValue(data.String("batchName")),
		BizScene:        StringValue(data.String("bizScene")),
		PayoutType:      StringValue(data.String("payoutType")),
		Currency:        StringValue(data.String("currency")),
		Chain:           StringValue(data.String("chain")),
		Status:          StringValue(data.String("status")),
	}
	upsert.TotalAmount = DecimalValue(data.Decimal("totalAmount"))
	upsert.TotalCount = Int64Value(data.Int64("totalCount"))
	upsert.TotalPaidAmount = DecimalValue(data.Decimal("totalPaidAmount"))
	upsert.ProcessingFee = DecimalValue(data.Decimal("processingFee"))
	upsert.TotalPayoutFee = DecimalValue(data.Decimal("totalPayoutFee"))
	for _, item := range data.Objects("withdrawDetailDtoList") {
		if item.String("detailId") == "" {
			continue
		}
		upsert.Details = append(upsert.Details, payoutDetailUpsertFromData(item))
	}
	return upsert
}

func payoutDetailUpsertFromData(data ProviderData) PayoutDetailUpsert {
	detail := PayoutDetailUpsert{
		DetailID:        data.String("detailId"),
		ReceiverUID:     StringValue(data.String("receiverUID")),
		ReceiverAddress: StringValue(data.String("receiverAddress")),
		Remark:          StringValue(data.String("remark")),
		Status:          StringValue(data.String("status")),
	}
	detail.Amount = DecimalValue(data.Decimal("amount"))
	detail.PayoutFee = DecimalValue(data.Decimal("payoutFee"))
	return detail
}
