// Package analytics implements the analytics domain façade: event tracking
// and conversation metrics over the analytics store.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/flowline-ai/flowline/internal/model"
	"github.com/flowline-ai/flowline/internal/storage"
)

// DefaultMetricsWindowDays is the trailing window used when get_metrics
// omits days.
const DefaultMetricsWindowDays = 7

// topFlowsLimit caps the flow leaderboard in a metrics report.
const topFlowsLimit = 5

// ErrEventTypeRequired is returned when track_event is called without an
// event type.
var ErrEventTypeRequired = errors.New("analytics: event_type is required")

// Service is the analytics domain façade. It owns no state beyond the
// injected store handle.
type Service struct {
	db     *storage.DB
	logger *slog.Logger
}

// New creates the analytics service around an already-opened store.
func New(db *storage.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// TrackEvent appends one event. Metadata may be nil (stored as {});
// eventType must be non-empty but is otherwise not validated.
func (s *Service) TrackEvent(ctx context.Context, eventType string, metadata map[string]any) error {
	if eventType == "" {
		return ErrEventTypeRequired
	}
	event, err := s.db.InsertEvent(ctx, eventType, metadata)
	if err != nil {
		return err
	}
	s.logger.Debug("event tracked", "event_id", event.ID, "event_type", eventType)
	return nil
}

// GetMetrics computes the conversation report for the trailing window of
// the given number of days (<= 0 falls back to the default). The three
// aggregates are read in one snapshot; completion_rate is defined as 0 when
// no conversations fall inside the window.
func (s *Service) GetMetrics(ctx context.Context, days int) (model.MetricsReport, error) {
	if days <= 0 {
		days = DefaultMetricsWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	total, completed, top, err := s.db.ConversationStats(ctx, since, topFlowsLimit)
	if err != nil {
		return model.MetricsReport{}, err
	}

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}
	if top == nil {
		top = []model.FlowCount{}
	}

	return model.MetricsReport{
		PeriodDays:         days,
		TotalConversations: total,
		CompletedFlows:     completed,
		CompletionRate:     rate,
		TopFlows:           top,
	}, nil
}
