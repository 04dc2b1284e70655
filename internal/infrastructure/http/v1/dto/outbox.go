package dto

import (
	"time"

	"pms/internal/outbox"
)

// OutboxEventResponse is the operational view of a ledger entry.
type OutboxEventResponse struct {
	ID            string     `json:"id"`
	EventType     string     `json:"eventType"`
	AggregateType string     `json:"aggregateType"`
	AggregateID   string     `json:"aggregateId"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retryCount"`
	MaxRetries    int        `json:"maxRetries"`
	ErrorMessage  *string    `json:"errorMessage,omitempty"`
	LastErrorAt   *time.Time `json:"lastErrorAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
}

// FromOutboxEvent maps a ledger entry to its response.
func FromOutboxEvent(e *outbox.Event) OutboxEventResponse {
	return OutboxEventResponse{
		ID:            e.ID.String(),
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		ErrorMessage:  e.ErrorMessage,
		LastErrorAt:   e.LastErrorAt,
		CreatedAt:     e.CreatedAt,
		PublishedAt:   e.PublishedAt,
		ProcessedAt:   e.ProcessedAt,
	}
}

// FromOutboxEvents maps a slice of ledger entries.
func FromOutboxEvents(items []*outbox.Event) []OutboxEventResponse {
	out := make([]OutboxEventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, FromOutboxEvent(e))
	}
	return out
}
