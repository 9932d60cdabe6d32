package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// MessageRepo implements storage.MessageRepository using PostgreSQL.
// Insertion order is the BIGSERIAL seq, not the message timestamp.
type MessageRepo struct {
	db *DB
}

// NewMessageRepo creates a new PostgreSQL message repository.
func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Push inserts the message and deletes everything beyond the newest limit rows.
func (r *MessageRepo) Push(ctx context.Context, msg domain.IntegrationMessage, limit int) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO integration_messages (id, platform, source, payload) VALUES ($1, $2, $3, $4)`,
		msg.ID, string(msg.Platform), string(msg.Source), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if limit > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM integration_messages
			WHERE seq NOT IN (
				SELECT seq FROM integration_messages ORDER BY seq DESC LIMIT $1
			)`, limit)
		if err != nil {
			return fmt.Errorf("failed to trim messages: %w", err)
		}
	}

	return tx.Commit()
}

// List returns up to limit messages, newest first.
func (r *MessageRepo) List(ctx context.Context, limit int) ([]domain.IntegrationMessage, error) {
	query := `SELECT payload FROM integration_messages ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows [][]byte
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	msgs := make([]domain.IntegrationMessage, 0, len(rows))
	for _, payload := range rows {
		var msg domain.IntegrationMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Warn("Skipping malformed stored message", "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
