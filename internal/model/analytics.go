package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is a tracked analytics event.
// Append-only: events are inserted by track_event and never read back by any
// tool in this service. Only conversations feed the metrics aggregation.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	EventType string         `json:"event_type"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// ConversationStatus represents the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "active"
	ConversationCompleted ConversationStatus = "completed"
)

// Conversation is a chatbot conversation row. Conversations are written by
// the chatbot runtime, not by this service; the analytics server only reads
// them for aggregate metrics.
type Conversation struct {
	ID          int64              `json:"id"`
	Status      ConversationStatus `json:"status"`
	CurrentFlow string             `json:"current_flow"`
	CreatedAt   time.Time          `json:"created_at"`
}

// FlowCount pairs a flow name with the number of conversations that
// triggered it.
type FlowCount struct {
	Flow  string `json:"flow"`
	Count int64  `json:"count"`
}

// MetricsReport summarizes conversation activity over a trailing window.
type MetricsReport struct {
	PeriodDays         int         `json:"period_days"`
	TotalConversations int64       `json:"total_conversations"`
	CompletedFlows     int64       `json:"completed_flows"`
	CompletionRate     float64     `json:"completion_rate"`
	TopFlows           []FlowCount `json:"top_flows"`
}
