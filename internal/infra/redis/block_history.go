package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/statusrelay/internal/core/domain"
)

// BlockHistoryRepo keeps observed blocks in a sorted set scored by height.
type BlockHistoryRepo struct {
	rdb *redis.Client
	key string
}

// NewBlockHistoryRepo creates a Redis-backed block history for one network.
func NewBlockHistoryRepo(client *Client, network string) *BlockHistoryRepo {
	return &BlockHistoryRepo{
		rdb: client.rdb,
		key: client.key(blockHeightsKey(network)),
	}
}

func blockHeightsKey(network string) string {
	if network == "" {
		return "block_heights"
	}
	return fmt.Sprintf("block_heights:%s", network)
}

// blockMember is the JSON stored as the sorted set member.
type blockMember struct {
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash"`
}

func encodeBlockMember(b domain.BlockRecord) (string, error) {
	data, err := json.Marshal(blockMember{Timestamp: b.Timestamp, Hash: b.Hash})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeBlockMember(member string, score float64) (domain.BlockRecord, error) {
	var m blockMember
	if err := json.Unmarshal([]byte(member), &m); err != nil {
		return domain.BlockRecord{}, fmt.Errorf("invalid block member: %w", err)
	}
	return domain.BlockRecord{
		Height:    uint64(score),
		Timestamp: m.Timestamp,
		Hash:      m.Hash,
	}, nil
}

// Save stores the block, replacing any member already scored at its height.
func (r *BlockHistoryRepo) Save(ctx context.Context, block domain.BlockRecord) error {
	member, err := encodeBlockMember(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block: %w", err)
	}

	score := float64(block.Height)
	height := fmt.Sprintf("%d", block.Height)

	_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, r.key, height, height)
		pipe.ZAdd(ctx, r.key, redis.Z{Score: score, Member: member})
		return nil
	})
	if err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	return nil
}

// Latest returns up to n of the highest blocks, ascending by height.
func (r *BlockHistoryRepo) Latest(ctx context.Context, n int) ([]domain.BlockRecord, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}

	results, err := r.rdb.ZRangeWithScores(ctx, r.key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	blocks := make([]domain.BlockRecord, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T", z.Member)
		}
		b, err := decodeBlockMember(member, z.Score)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Prune removes every member ranked below the keep highest heights.
func (r *BlockHistoryRepo) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
			return fmt.Errorf("del failed: %w", err)
		}
		return nil
	}
	if err := r.rdb.ZRemRangeByRank(ctx, r.key, 0, int64(-keep-1)).Err(); err != nil {
		return fmt.Errorf("zremrangebyrank failed: %w", err)
	}
	return nil
}
