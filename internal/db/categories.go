package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"crisiswatch/internal/models"
)

// GetCategoryByID retrieves a ticket category.
func (d *DB) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.TicketCategory, error) {
	var cat models.TicketCategory
	err := d.Pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM ticket_categories WHERE id = $1
	`, id).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategories retrieves all ticket categories by name.
func (d *DB) ListCategories(ctx context.Context) ([]models.TicketCategory, error) {
	rows, err := d.Pool.Query(ctx, `SELECT id, name, created_at FROM ticket_categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.TicketCategory
	for rows.Next() {
		var cat models.TicketCategory
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// UpsertCategory creates a ticket category by name if it does not exist
// and returns it. Categories are owned by the ticketing application; this
// service only mirrors the ones its keywords reference.
func (d *DB) UpsertCategory(ctx context.Context, name string) (*models.TicketCategory, error) {
	var cat models.TicketCategory
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO ticket_categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`, name).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}
