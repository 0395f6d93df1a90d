package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"crisiswatch/internal/models"
	"crisiswatch/internal/validation"
)

// keywordColumns is the standard column list for keyword queries.
const keywordColumns = `id, text, severity_level, category_id, is_active, exact_match,
	case_sensitive, trigger_count, last_triggered_at, response_action, notification_rules,
	created_by, updated_by, created_at, updated_at`

// scanKeyword scans a row into a Keyword struct.
func scanKeyword(row pgx.Row) (*models.Keyword, error) {
	var kw models.Keyword
	err := row.Scan(
		&kw.ID,
		&kw.Text,
		&kw.SeverityLevel,
		&kw.CategoryID,
		&kw.IsActive,
		&kw.ExactMatch,
		&kw.CaseSensitive,
		&kw.TriggerCount,
		&kw.LastTriggeredAt,
		&kw.ResponseAction,
		&kw.NotificationRules,
		&kw.CreatedBy,
		&kw.UpdatedBy,
		&kw.CreatedAt,
		&kw.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

// scanKeywords scans multiple rows into a slice of Keywords.
func scanKeywords(rows pgx.Rows) ([]models.Keyword, error) {
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(
			&kw.ID,
			&kw.Text,
			&kw.SeverityLevel,
			&kw.CategoryID,
			&kw.IsActive,
			&kw.ExactMatch,
			&kw.CaseSensitive,
			&kw.TriggerCount,
			&kw.LastTriggeredAt,
			&kw.ResponseAction,
			&kw.NotificationRules,
			&kw.CreatedBy,
			&kw.UpdatedBy,
			&kw.CreatedAt,
			&kw.UpdatedAt,
		); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}

	return keywords, rows.Err()
}

// ListActiveKeywords returns the active keywords applicable to a category
// scope: global keywords always, plus category-specific ones when a
// category is given.
func (d *DB) ListActiveKeywords(ctx context.Context, categoryID *uuid.UUID) ([]models.Keyword, error) {
	var rows pgx.Rows
	var err error

	if categoryID == nil {
		rows, err = d.Pool.Query(ctx, `
			SELECT `+keywordColumns+`
			FROM keywords
			WHERE is_active AND category_id IS NULL
			ORDER BY text ASC
		`)
	} else {
		rows, err = d.Pool.Query(ctx, `
			SELECT `+keywordColumns+`
			FROM keywords
			WHERE is_active AND (category_id IS NULL OR category_id = $1)
			ORDER BY text ASC
		`, *categoryID)
	}
	if err != nil {
		return nil, err
	}
	return scanKeywords(rows)
}

// CreateKeyword inserts a new keyword. Text is normalized at the storage
// boundary; the partial unique indexes enforce (text, category_id)
// uniqueness atomically with the insert.
func (d *DB) CreateKeyword(ctx context.Context, kw *models.Keyword) error {
	kw.Text = validation.NormalizeKeyword(kw.Text)

	query := `
		INSERT INTO keywords (text, severity_level, category_id, is_active, exact_match,
			case_sensitive, response_action, notification_rules, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id, trigger_count, created_at, updated_at
	`

	err := d.Pool.QueryRow(ctx, query,
		kw.Text,
		kw.SeverityLevel,
		kw.CategoryID,
		kw.IsActive,
		kw.ExactMatch,
		kw.CaseSensitive,
		kw.ResponseAction,
		kw.NotificationRules,
		kw.CreatedBy,
	).Scan(&kw.ID, &kw.TriggerCount, &kw.CreatedAt, &kw.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKeyword
		}
		return err
	}

	kw.UpdatedBy = kw.CreatedBy
	return nil
}

// GetKeywordByID retrieves a keyword by its ID.
func (d *DB) GetKeywordByID(ctx context.Context, id uuid.UUID) (*models.Keyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM keywords WHERE id = $1`
	return scanKeyword(d.Pool.QueryRow(ctx, query, id))
}

// GetKeywordByText retrieves a keyword by its normalized text within a
// category scope (nil means the global scope).
func (d *DB) GetKeywordByText(ctx context.Context, text string, categoryID *uuid.UUID) (*models.Keyword, error) {
	normalized := validation.NormalizeKeyword(text)
	query := `
		SELECT ` + keywordColumns + `
		FROM keywords
		WHERE lower(text) = $1 AND category_id IS NOT DISTINCT FROM $2
	`
	return scanKeyword(d.Pool.QueryRow(ctx, query, normalized, categoryID))
}

// UpdateKeyword updates a keyword's configurable fields. Trigger statistics
// are never written here; they belong to RecordTriggers.
func (d *DB) UpdateKeyword(ctx context.Context, kw *models.Keyword) error {
	kw.Text = validation.NormalizeKeyword(kw.Text)

	query := `
		UPDATE keywords
		SET text = $1, severity_level = $2, category_id = $3, is_active = $4,
			exact_match = $5, case_sensitive = $6, response_action = $7,
			notification_rules = $8, updated_by = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		kw.Text,
		kw.SeverityLevel,
		kw.CategoryID,
		kw.IsActive,
		kw.ExactMatch,
		kw.CaseSensitive,
		kw.ResponseAction,
		kw.NotificationRules,
		kw.UpdatedBy,
		kw.ID,
	).Scan(&kw.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrKeywordNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKeyword
		}
		return err
	}
	return nil
}

// UpdateKeywordSeverity changes only the severity of a keyword. Used by
// imports with overwrite enabled.
func (d *DB) UpdateKeywordSeverity(ctx context.Context, id uuid.UUID, severity string, updatedBy *string) error {
	query := `
		UPDATE keywords
		SET severity_level = $1, updated_by = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := d.Pool.Exec(ctx, query, severity, updatedBy, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

// DeleteKeyword hard-deletes a keyword. Its trigger statistics are lost.
func (d *DB) DeleteKeyword(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

// RecordTriggers increments the trigger count and stamps last_triggered_at
// for every matched keyword in one statement. The increment happens
// database-side so concurrent detections never lose updates.
func (d *DB) RecordTriggers(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.Pool.Exec(ctx, `
		UPDATE keywords
		SET trigger_count = trigger_count + 1, last_triggered_at = NOW()
		WHERE id = ANY($1)
	`, ids)
	return err
}

// KeywordFilter narrows ListKeywords results. Zero values mean "no filter".
type KeywordFilter struct {
	CategoryID *uuid.UUID
	GlobalOnly bool
	Severity   string
	Active     *bool
	Search     string
	Limit      int
}

// ListKeywords retrieves keywords matching the filter, most recently
// updated first.
func (d *DB) ListKeywords(ctx context.Context, filter KeywordFilter) ([]models.Keyword, error) {
	sql := `SELECT ` + keywordColumns + ` FROM keywords WHERE TRUE`
	var args []any

	if filter.GlobalOnly {
		sql += ` AND category_id IS NULL`
	} else if filter.CategoryID != nil {
		sql += ` AND category_id = $` + strconv.Itoa(len(args)+1)
		args = append(args, *filter.CategoryID)
	}
	if filter.Severity != "" {
		sql += ` AND severity_level = $` + strconv.Itoa(len(args)+1)
		args = append(args, filter.Severity)
	}
	if filter.Active != nil {
		sql += ` AND is_active = $` + strconv.Itoa(len(args)+1)
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		sql += ` AND text ILIKE $` + strconv.Itoa(len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	sql += ` ORDER BY updated_at DESC, text ASC`

	if filter.Limit > 0 {
		sql += ` LIMIT $` + strconv.Itoa(len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanKeywords(rows)
}

// SetKeywordsActive bulk-activates or deactivates keywords.
func (d *DB) SetKeywordsActive(ctx context.Context, ids []uuid.UUID, active bool, updatedBy *string) (int64, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE keywords
		SET is_active = $1, updated_by = $2, updated_at = NOW()
		WHERE id = ANY($3)
	`, active, updatedBy, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// SetKeywordsSeverity bulk-changes the severity of keywords.
func (d *DB) SetKeywordsSeverity(ctx context.Context, ids []uuid.UUID, severity string, updatedBy *string) (int64, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE keywords
		SET severity_level = $1, updated_by = $2, updated_at = NOW()
		WHERE id = ANY($3)
	`, severity, updatedBy, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// DeleteKeywords bulk-deletes keywords.
func (d *DB) DeleteKeywords(ctx context.Context, ids []uuid.UUID) (int64, error) {
	result, err := d.Pool.Exec(ctx, `DELETE FROM keywords WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ResetKeywordStats zeroes trigger statistics for the given keywords. This
// is the only supported way to lower a trigger count, and it is audited
// through updated_by.
func (d *DB) ResetKeywordStats(ctx context.Context, ids []uuid.UUID, updatedBy *string) (int64, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE keywords
		SET trigger_count = 0, last_triggered_at = NULL, updated_by = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`, updatedBy, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
