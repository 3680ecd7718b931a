package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-kucoinpay/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ReportStore keeps one row per (report type, report date).
type ReportStore struct {
	db   *bun.DB
	repo repository.Repository[*reportRecord]
}

func NewReportStore(db *bun.DB) (*ReportStore, error) {
	repo, err := newRepository(db, reportHandlers(), "report")
	if err != nil {
		return nil, err
	}
	return &ReportStore{db: db, repo: repo}, nil
}

func (s *ReportStore) UpsertReport(ctx context.Context, in core.ReportUpsert) (core.Report, error) {
	if s == nil || s.db == nil {
		return core.Report{}, fmt.Errorf("sqlstore: report store is not configured")
	}
	reportType := strings.TrimSpace(in.ReportType)
	reportDate := strings.TrimSpace(in.ReportDate)
	if reportType == "" || reportDate == "" {
		return core.Report{}, fmt.Errorf("sqlstore: report type and date are required")
	}

	var out core.Report
	err := runUpsert(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		record := &reportRecord{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.report_type = ?", reportType).
			Where("?TableAlias.report_date = ?", reportDate).
			Limit(1).
			Scan(ctx)
		found := err == nil
		if err != nil && !isNoRows(err) {
			return err
		}
		if !found {
			record = &reportRecord{
				ID:         uuid.NewString(),
				ReportType: reportType,
				ReportDate: reportDate,
				CreatedAt:  now,
			}
		}
		setString(&record.FileName, in.FileName)
		setString(&record.DownloadURL, in.DownloadURL)
		setString(&record.Status, in.Status)
		setJSON(&record.Payload, in.Payload)
		record.UpdatedAt = now
		if !found {
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				return err
			}
		} else if _, err := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); err != nil {
			return err
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.Report{}, err
	}
	return out, nil
}

// ListReports returns reports dated within [startDate, endDate]. Dates are
// compared as text, so they must share the provider's yyyy-MM-dd layout. A
// blank reportType lists every type.
func (s *ReportStore) ListReports(ctx context.Context, reportType string, startDate string, endDate string) ([]core.Report, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: report store is not configured")
	}
	criteria := []repository.SelectCriteria{
		repository.OrderBy("report_date ASC"),
	}
	if trimmed := strings.TrimSpace(reportType); trimmed != "" {
		criteria = append(criteria, repository.SelectBy("report_type", "=", trimmed))
	}
	if trimmed := strings.TrimSpace(startDate); trimmed != "" {
		criteria = append(criteria, repository.SelectBy("report_date", ">=", trimmed))
	}
	if trimmed := strings.TrimSpace(endDate); trimmed != "" {
		criteria = append(criteria, repository.SelectBy("report_date", "<=", trimmed))
	}
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.Report, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (r *reportRecord) toDomain() core.Report {
	if r == nil {
		return core.Report{}
	}
	return core.Report{
		ID:          r.ID,
		ReportType:  r.ReportType,
		ReportDate:  r.ReportDate,
		FileName:    r.FileName,
		DownloadURL: r.DownloadURL,
		Status:      r.Status,
		Payload:     rawJSON(r.Payload),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
