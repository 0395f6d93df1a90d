package db

import (
	"context"

	"crisiswatch/internal/models"
)

// GetKeywordStats aggregates the statistics the admin surface reports:
// totals, severity breakdown, global vs category-scoped counts, and the
// most triggered keywords.
func (d *DB) GetKeywordStats(ctx context.Context, topN int) (*models.KeywordStats, error) {
	stats := &models.KeywordStats{}

	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active),
			COUNT(*) FILTER (WHERE category_id IS NULL),
			COUNT(*) FILTER (WHERE category_id IS NOT NULL),
			COUNT(*) FILTER (WHERE trigger_count = 0)
		FROM keywords
	`).Scan(&stats.Total, &stats.Active, &stats.Inactive, &stats.Global, &stats.CategoryBound, &stats.NeverTriggered)
	if err != nil {
		return nil, err
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT severity_level, COUNT(*)
		FROM keywords
		GROUP BY severity_level
		ORDER BY CASE severity_level
			WHEN 'critical' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3 ELSE 4
		END
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc models.SeverityCount
		if err := rows.Scan(&sc.SeverityLevel, &sc.Count); err != nil {
			return nil, err
		}
		stats.BySeverity = append(stats.BySeverity, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.MostTriggered, err = d.GetTriggerStats(ctx, topN)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetTriggerStats returns per-keyword trigger counts, most triggered first.
// A limit of 0 returns every keyword; the metrics collector uses that to
// export the full set on each scrape.
func (d *DB) GetTriggerStats(ctx context.Context, limit int) ([]models.TriggerStat, error) {
	query := `
		SELECT id, text, severity_level, trigger_count, last_triggered_at
		FROM keywords
		ORDER BY trigger_count DESC, text ASC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TriggerStat
	for rows.Next() {
		var ts models.TriggerStat
		if err := rows.Scan(&ts.ID, &ts.Text, &ts.SeverityLevel, &ts.TriggerCount, &ts.LastTriggeredAt); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
