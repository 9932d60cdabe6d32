// Package messages keeps the capped history of relayed notifications.
package messages

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/infra/storage"
	"github.com/vietddude/statusrelay/internal/metrics"
)

// MaxMessages is the retention cap of the message history.
const MaxMessages = 100

// Store is a best-effort ring buffer over a MessageRepository.
// Storage failures are logged and never returned to callers.
type Store struct {
	repo storage.MessageRepository
	log  *slog.Logger
}

// NewStore creates a Store on top of repo.
func NewStore(repo storage.MessageRepository) *Store {
	return &Store{
		repo: repo,
		log:  slog.Default().With("component", "message_store"),
	}
}

// AddMessage prepends msg and evicts the oldest entries beyond MaxMessages.
func (s *Store) AddMessage(ctx context.Context, msg domain.IntegrationMessage) {
	if err := s.repo.Push(ctx, msg, MaxMessages); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("add").Inc()
		s.log.Error("Failed to store message", "id", msg.ID, "error", err)
	}
}

// GetRecentMessages returns at most MaxMessages records, newest first.
// A storage failure yields an empty slice.
func (s *Store) GetRecentMessages(ctx context.Context) []domain.IntegrationMessage {
	msgs, err := s.repo.List(ctx, MaxMessages)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list").Inc()
		s.log.Error("Failed to fetch messages", "error", err)
		return []domain.IntegrationMessage{}
	}
	metrics.StoredMessages.Set(float64(len(msgs)))
	if msgs == nil {
		return []domain.IntegrationMessage{}
	}
	return msgs
}

// HasBeenSent reports whether any stored message was triggered by incidentID.
func (s *Store) HasBeenSent(ctx context.Context, incidentID string) domain.SentStatus {
	return sentStatus(s.GetRecentMessages(ctx), incidentID)
}

// HasBeenSentAll resolves the sent status of several incidents with one read.
func (s *Store) HasBeenSentAll(ctx context.Context, incidentIDs []string) map[string]domain.SentStatus {
	msgs := s.GetRecentMessages(ctx)
	out := make(map[string]domain.SentStatus, len(incidentIDs))
	for _, id := range incidentIDs {
		out[id] = sentStatus(msgs, id)
	}
	return out
}

func sentStatus(msgs []domain.IntegrationMessage, incidentID string) domain.SentStatus {
	status := domain.SentStatus{
		Platforms: []domain.Platform{},
		Type:      domain.SourceManual,
	}
	if incidentID == "" {
		return status
	}

	seen := make(map[domain.Platform]bool)
	for _, msg := range msgs {
		if msg.Trigger == nil || msg.Trigger.IncidentID != incidentID {
			continue
		}
		// msgs is newest first, so the first match is the latest send
		if !status.Sent {
			status.Sent = true
			status.Timestamp = msg.Timestamp
			status.Type = msg.Source
		}
		if !seen[msg.Platform] {
			seen[msg.Platform] = true
			status.Platforms = append(status.Platforms, msg.Platform)
		}
	}
	return status
}

// NewID returns a collision-resistant message id tagged with its source.
func NewID(source domain.Source) string {
	return fmt.Sprintf("%s-%s", source, uuid.New().String())
}

// NewMessage builds a record stamped with the current time.
func NewMessage(
	platform domain.Platform,
	content string,
	source domain.Source,
	trigger *domain.Trigger,
) domain.IntegrationMessage {
	return domain.IntegrationMessage{
		ID:        NewID(source),
		Platform:  platform,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Source:    source,
		Trigger:   trigger,
	}
}
