package bulk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"crisiswatch/internal/db"
	"crisiswatch/internal/models"
	"crisiswatch/internal/validation"
)

// KeywordStore is the slice of the repository the importer needs.
type KeywordStore interface {
	GetKeywordByText(ctx context.Context, text string, categoryID *uuid.UUID) (*models.Keyword, error)
	CreateKeyword(ctx context.Context, kw *models.Keyword) error
	UpdateKeywordSeverity(ctx context.Context, id uuid.UUID, severity string, updatedBy *string) error
}

// Importer runs bulk keyword imports. A batch never aborts on a single
// item's failure: every item either succeeds or contributes a per-item
// error, and successfully processed items are never rolled back.
type Importer struct {
	store KeywordStore
	sets  *SetLibrary
}

// NewImporter creates an importer over the given store and set library.
func NewImporter(store KeywordStore, sets *SetLibrary) *Importer {
	return &Importer{store: store, sets: sets}
}

// ImportSet imports a predefined keyword set into a category scope.
// Existing keywords are either skipped (overwrite=false, reported as a
// per-item error) or have their severity updated (overwrite=true). New
// keywords are created active and case-insensitive with no trigger
// history.
func (im *Importer) ImportSet(ctx context.Context, setName string, categoryID *uuid.UUID, defaultSeverity string, overwrite bool, actor *string) (*models.ImportResult, error) {
	set, ok := im.sets.Get(setName)
	if !ok {
		return nil, fmt.Errorf("unknown keyword set %q", setName)
	}
	if ok, msg := validation.ValidateSeverity(defaultSeverity); !ok {
		return nil, errors.New(msg)
	}

	result := &models.ImportResult{Errors: []models.ImportError{}}
	for _, item := range set.Keywords {
		severity := item.Severity
		if severity == "" {
			severity = defaultSeverity
		}
		im.importOne(ctx, result, item.Text, severity, item.ExactMatch, categoryID, overwrite, actor, 0)
	}
	return result, nil
}

// ImportCSV imports keywords from CSV rows of the form `text[,severity]`.
// A header row starting with "text" is skipped. Row numbers are reported
// in per-item errors.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, categoryID *uuid.UUID, defaultSeverity string, overwrite bool, actor *string) (*models.ImportResult, error) {
	if ok, msg := validation.ValidateSeverity(defaultSeverity); !ok {
		return nil, errors.New(msg)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &models.ImportResult{Errors: []models.ImportError{}}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// Parse errors are per-row and never abort the batch; a
			// failing underlying reader would repeat forever.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read CSV input: %w", err)
			}
			result.Errors = append(result.Errors, models.ImportError{
				Line:   line,
				Reason: "malformed CSV row: " + err.Error(),
			})
			continue
		}
		if len(record) == 0 {
			continue
		}

		text := strings.TrimSpace(record[0])
		if line == 1 && strings.EqualFold(text, "text") {
			continue
		}

		severity := defaultSeverity
		if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
			severity = strings.ToLower(strings.TrimSpace(record[1]))
		}

		im.importOne(ctx, result, text, severity, false, categoryID, overwrite, actor, line)
	}
	return result, nil
}

// importOne processes a single candidate keyword, appending its outcome to
// the result.
func (im *Importer) importOne(ctx context.Context, result *models.ImportResult, text, severity string, exactMatch bool, categoryID *uuid.UUID, overwrite bool, actor *string, line int) {
	normalized := validation.NormalizeKeyword(text)
	if ok, msg := validation.ValidateKeywordText(normalized); !ok {
		result.Errors = append(result.Errors, models.ImportError{Item: text, Line: line, Reason: msg})
		return
	}
	if ok, msg := validation.ValidateSeverity(severity); !ok {
		result.Errors = append(result.Errors, models.ImportError{Item: normalized, Line: line, Reason: msg})
		return
	}

	existing, err := im.store.GetKeywordByText(ctx, normalized, categoryID)
	switch {
	case err == nil:
		if !overwrite {
			result.Errors = append(result.Errors, models.ImportError{
				Item: normalized, Line: line,
				Reason: "keyword already exists for this category",
			})
			return
		}
		if err := im.store.UpdateKeywordSeverity(ctx, existing.ID, severity, actor); err != nil {
			result.Errors = append(result.Errors, models.ImportError{Item: normalized, Line: line, Reason: err.Error()})
			return
		}
		result.UpdatedCount++
		return
	case errors.Is(err, db.ErrKeywordNotFound):
		// Fall through to create.
	default:
		result.Errors = append(result.Errors, models.ImportError{Item: normalized, Line: line, Reason: err.Error()})
		return
	}

	kw := &models.Keyword{
		Text:          normalized,
		SeverityLevel: severity,
		CategoryID:    categoryID,
		IsActive:      true,
		ExactMatch:    exactMatch,
		CaseSensitive: false,
		CreatedBy:     actor,
	}
	if err := im.store.CreateKeyword(ctx, kw); err != nil {
		reason := err.Error()
		if errors.Is(err, db.ErrDuplicateKeyword) {
			reason = "keyword already exists for this category"
		}
		result.Errors = append(result.Errors, models.ImportError{Item: normalized, Line: line, Reason: reason})
		return
	}
	result.ImportedCount++
}
