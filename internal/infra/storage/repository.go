package storage

import (
	"context"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// MessageRepository persists the capped, insertion-ordered message list.
type MessageRepository interface {
	// Push prepends msg and trims the list to the newest limit entries.
	Push(ctx context.Context, msg domain.IntegrationMessage, limit int) error

	// List returns up to limit messages, newest first.
	List(ctx context.Context, limit int) ([]domain.IntegrationMessage, error)
}

// BlockHistoryRepository persists observed blocks sorted by height.
type BlockHistoryRepository interface {
	// Save stores a block, replacing any record at the same height.
	Save(ctx context.Context, block domain.BlockRecord) error

	// Latest returns up to n of the highest blocks in ascending height order.
	Latest(ctx context.Context, n int) ([]domain.BlockRecord, error)

	// Prune drops everything below the keep highest heights. A keep of
	// zero or less clears the history.
	Prune(ctx context.Context, keep int) error
}
