package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowline-ai/flowline/internal/model"
)

// InsertEvent appends one analytics event. The ID and creation timestamp are
// assigned here, never by the caller. Events are write-only from the tool
// surface: nothing in this service reads them back.
func (db *DB) InsertEvent(ctx context.Context, eventType string, metadata map[string]any) (model.Event, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return model.Event{}, fmt.Errorf("storage: marshal event metadata: %w", err)
	}

	event := model.Event{
		ID:        uuid.New(),
		EventType: eventType,
		Metadata:  metadata,
		CreatedAt: now(),
	}

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO analytics (id, event_type, metadata, created_at) VALUES (?, ?, ?, ?)`,
		event.ID.String(), event.EventType, string(payload), formatTime(event.CreatedAt),
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("storage: insert event: %w", err)
	}
	return event, nil
}

// CountEvents returns the total number of stored events. Used by tests and
// health tooling only; no tool exposes event reads.
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analytics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count events: %w", err)
	}
	return n, nil
}
