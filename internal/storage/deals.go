package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flowline-ai/flowline/internal/model"
)

// CreateDeal inserts a deal and returns its generated id. The contacts
// foreign key is declared in the schema but not enforced here; existence
// checks are the CRM service's concern (strict mode only).
func (db *DB) CreateDeal(ctx context.Context, deal model.Deal) (int64, error) {
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO deals (contact_id, title, value, stage, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		deal.ContactID, deal.Title, deal.Value, deal.Stage, formatTime(now()),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert deal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: deal id: %w", err)
	}
	return id, nil
}

// GetDeal returns the deal with the given id, or ErrNotFound.
func (db *DB) GetDeal(ctx context.Context, id int64) (model.Deal, error) {
	var (
		deal      model.Deal
		createdAt string
	)
	err := db.db.QueryRowContext(ctx,
		`SELECT id, contact_id, title, value, stage, created_at
		 FROM deals WHERE id = ?`, id,
	).Scan(&deal.ID, &deal.ContactID, &deal.Title, &deal.Value, &deal.Stage, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Deal{}, ErrNotFound
	}
	if err != nil {
		return model.Deal{}, fmt.Errorf("storage: get deal %d: %w", id, err)
	}
	if deal.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Deal{}, err
	}
	return deal, nil
}
