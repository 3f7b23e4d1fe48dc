package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flowline-ai/flowline/internal/model"
)

// InsertConversation records a conversation row. This is the chatbot
// runtime's write path — the analytics tools only aggregate over it. If
// CreatedAt is zero the server-assigned timestamp is used; a non-zero value
// is honored so callers can backfill historical conversations.
func (db *DB) InsertConversation(ctx context.Context, conv model.Conversation) (int64, error) {
	createdAt := conv.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}

	res, err := db.db.ExecContext(ctx,
		`INSERT INTO conversations (status, current_flow, created_at) VALUES (?, ?, ?)`,
		string(conv.Status), conv.CurrentFlow, formatTime(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert conversation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: conversation id: %w", err)
	}
	return id, nil
}

// ConversationStats runs the three metrics aggregates over conversations
// created at or after since: total count, completed count, and the topN
// flows by descending count. All three reads run in a single read
// transaction so they observe the same snapshot even under concurrent
// inserts. Flow ties are broken by flow name ascending so the ordering is
// deterministic rather than dependent on row order.
func (db *DB) ConversationStats(ctx context.Context, since time.Time, topN int) (total, completed int64, top []model.FlowCount, err error) {
	tx, err := db.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return 0, 0, nil, fmt.Errorf("storage: begin stats read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cutoff := formatTime(since)

	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE created_at >= ?`, cutoff,
	).Scan(&total); err != nil {
		return 0, 0, nil, fmt.Errorf("storage: count conversations: %w", err)
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE status = 'completed' AND created_at >= ?`, cutoff,
	).Scan(&completed); err != nil {
		return 0, 0, nil, fmt.Errorf("storage: count completed: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT current_flow, COUNT(*) AS count
		 FROM conversations
		 WHERE created_at >= ?
		 GROUP BY current_flow
		 ORDER BY count DESC, current_flow ASC
		 LIMIT ?`,
		cutoff, topN,
	)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("storage: top flows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc model.FlowCount
		if err = rows.Scan(&fc.Flow, &fc.Count); err != nil {
			return 0, 0, nil, fmt.Errorf("storage: scan flow count: %w", err)
		}
		top = append(top, fc)
	}
	if err = rows.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("storage: iterate flow counts: %w", err)
	}

	return total, completed, top, nil
}
