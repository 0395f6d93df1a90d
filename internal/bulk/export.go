package bulk

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"crisiswatch/internal/db"
	"crisiswatch/internal/models"
)

// ExportStore is the slice of the repository the exporter needs.
type ExportStore interface {
	ListKeywords(ctx context.Context, filter db.KeywordFilter) ([]models.Keyword, error)
	ListCategories(ctx context.Context) ([]models.TicketCategory, error)
}

// Exporter projects the keyword set for external serialization.
type Exporter struct {
	store ExportStore
}

// NewExporter creates an exporter over the given store.
func NewExporter(store ExportStore) *Exporter {
	return &Exporter{store: store}
}

// Export returns the keywords matching the filter as projection rows.
// Trigger statistics are included only when includeStats is set.
func (e *Exporter) Export(ctx context.Context, filter db.KeywordFilter, includeStats bool) ([]models.ExportRow, error) {
	keywords, err := e.store.ListKeywords(ctx, filter)
	if err != nil {
		return nil, err
	}

	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	rows := make([]models.ExportRow, 0, len(keywords))
	for _, kw := range keywords {
		row := models.ExportRow{
			Text:          kw.Text,
			SeverityLevel: kw.SeverityLevel,
			IsActive:      kw.IsActive,
			ExactMatch:    kw.ExactMatch,
			CaseSensitive: kw.CaseSensitive,
		}
		if kw.CategoryID != nil {
			row.CategoryName = names[*kw.CategoryID]
		}
		if includeStats {
			count := kw.TriggerCount
			row.TriggerCount = &count
			row.LastTriggeredAt = kw.LastTriggeredAt
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV serializes export rows as CSV with a header row.
func WriteCSV(w io.Writer, rows []models.ExportRow, includeStats bool) error {
	writer := csv.NewWriter(w)

	header := []string{"text", "severity_level", "category", "is_active", "exact_match", "case_sensitive"}
	if includeStats {
		header = append(header, "trigger_count", "last_triggered_at")
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Text,
			row.SeverityLevel,
			row.CategoryName,
			strconv.FormatBool(row.IsActive),
			strconv.FormatBool(row.ExactMatch),
			strconv.FormatBool(row.CaseSensitive),
		}
		if includeStats {
			var count, last string
			if row.TriggerCount != nil {
				count = strconv.FormatInt(*row.TriggerCount, 10)
			}
			if row.LastTriggeredAt != nil {
				last = row.LastTriggeredAt.UTC().Format(time.RFC3339)
			}
			record = append(record, count, last)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
