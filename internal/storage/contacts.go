package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flowline-ai/flowline/internal/model"
)

// CreateContact inserts a contact and returns its generated id. Tags are
// stored as a JSON array; a nil slice is stored as [] so reads never see
// null. The creation timestamp is server-assigned.
func (db *DB) CreateContact(ctx context.Context, contact model.Contact) (int64, error) {
	tags := contact.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("storage: marshal tags: %w", err)
	}

	res, err := db.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email, phone, company, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		contact.Name, contact.Email, contact.Phone, contact.Company,
		string(tagsJSON), formatTime(now()),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: contact id: %w", err)
	}
	return id, nil
}

// GetContact returns the contact with the given id, or ErrNotFound.
func (db *DB) GetContact(ctx context.Context, id int64) (model.Contact, error) {
	var (
		contact   model.Contact
		tagsJSON  string
		createdAt string
	)
	err := db.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, company, tags, created_at
		 FROM contacts WHERE id = ?`, id,
	).Scan(&contact.ID, &contact.Name, &contact.Email, &contact.Phone,
		&contact.Company, &tagsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, ErrNotFound
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("storage: get contact %d: %w", id, err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &contact.Tags); err != nil {
		return model.Contact{}, fmt.Errorf("storage: unmarshal tags for contact %d: %w", id, err)
	}
	if contact.Tags == nil {
		contact.Tags = []string{}
	}
	if contact.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Contact{}, err
	}
	return contact, nil
}
