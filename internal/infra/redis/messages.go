package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/statusrelay/internal/core/domain"
)

const messagesKey = "messages"

// MessageRepo stores the recent message list in a Redis list (LPUSH + LTRIM).
type MessageRepo struct {
	rdb *redis.Client
	key string
}

// NewMessageRepo creates a Redis-backed message repository.
func NewMessageRepo(client *Client) *MessageRepo {
	return &MessageRepo{
		rdb: client.rdb,
		key: client.key(messagesKey),
	}
}

// Push prepends the message and trims the list to limit entries.
// The two commands are pipelined, not transactional.
func (r *MessageRepo) Push(ctx context.Context, msg domain.IntegrationMessage, limit int) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		if limit > 0 {
			pipe.LTrim(ctx, r.key, 0, int64(limit-1))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("lpush failed: %w", err)
	}
	return nil
}

// List returns up to limit messages, newest first.
func (r *MessageRepo) List(ctx context.Context, limit int) ([]domain.IntegrationMessage, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raw, err := r.rdb.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	return decodeMessages(raw), nil
}

// decodeMessages skips entries that fail to parse instead of failing the read.
func decodeMessages(raw []string) []domain.IntegrationMessage {
	msgs := make([]domain.IntegrationMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.IntegrationMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			slog.Warn("Skipping malformed stored message", "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
