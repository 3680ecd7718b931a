package core

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/canonical"
)

type ReportQueryRequest struct {
	ReportType string `json:"reportType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

func (s *Service) QueryReconciliationReports(ctx context.Context, req ReportQueryRequest) (result ProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"report_type": req.ReportType, "start_date": req.StartDate, "end_date": req.EndDate}
	defer func() {
		s.observeOperation(ctx, startedAt, "query_reconciliation_reports", err, fields)
	}()

	reportType := strings.TrimSpace(req.ReportType)
	startDate := strings.TrimSpace(req.StartDate)
	endDate := strings.TrimSpace(req.EndDate)
	checks := fieldChecks{}
	checks.require("reportType", reportType != "")
	checks.require("startDate", startDate != "")
	checks.require("endDate", endDate != "")
	if err = checks.err(string(canonical.ReportQuery)); err != nil {
		return ProviderResult{}, err
	}

	result, err = s.invoke(ctx, OutboundCall{
		Operation: canonical.ReportQuery,
		Fields: canonical.Fields{
			"endDate":    endDate,
			"reportType": reportType,
			"startDate":  startDate,
		},
		Body: map[string]any{
			"reportType": reportType,
			"startDate":  startDate,
			"endDate":    endDate,
		},
	})
	if err != nil {
		return ProviderResult{}, err
	}

	reports := result.Items()
	fields["items"] = len(reports)
	err = s.persist(string(canonical.ReportQuery), s.reportStore != nil, func() error {
		for _, report := range reports {
			upsert := ReportUpsert{
				ReportType:  firstNonEmpty(report.String("reportType"), reportType),
				ReportDate:  report.String("reportDate"),
				FileName:    StringValue(report.String("fileName")),
				DownloadURL: StringValue(report.String("downloadUrl")),
				Status:      StringValue(report.String("status")),
			}
			if upsert.ReportDate == "" {
				continue
			}
			if encoded, marshalErr := marshalProviderData(report); marshalErr == nil {
				upsert.Payload = encoded
			}
			if _, upsertErr := s.reportStore.UpsertReport(ctx, upsert); upsertErr != nil {
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
