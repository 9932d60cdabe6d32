package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// MemoryStorage backs single-process deployments and tests.
type MemoryStorage struct {
	messages []domain.IntegrationMessage // newest first
	blocks   map[uint64]domain.BlockRecord
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blocks: make(map[uint64]domain.BlockRecord),
	}
}

// -----------------------------------------------------------------------------
// Message Repository
// -----------------------------------------------------------------------------

type MessageRepo struct {
	store *MemoryStorage
}

func NewMessageRepo(store *MemoryStorage) *MessageRepo {
	return &MessageRepo{store: store}
}

func (r *MessageRepo) Push(ctx context.Context, msg domain.IntegrationMessage, limit int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n := len(r.store.messages) + 1
	if limit > 0 && n > limit {
		n = limit
	}
	next := make([]domain.IntegrationMessage, 0, n)
	next = append(next, msg)
	for _, m := range r.store.messages {
		if len(next) == n {
			break
		}
		next = append(next, m)
	}
	r.store.messages = next
	return nil
}

func (r *MessageRepo) List(ctx context.Context, limit int) ([]domain.IntegrationMessage, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := len(r.store.messages)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]domain.IntegrationMessage, n)
	copy(out, r.store.messages[:n])
	return out, nil
}

// -----------------------------------------------------------------------------
// Block History Repository
// -----------------------------------------------------------------------------

type BlockHistoryRepo struct {
	store *MemoryStorage
}

func NewBlockHistoryRepo(store *MemoryStorage) *BlockHistoryRepo {
	return &BlockHistoryRepo{store: store}
}

func (r *BlockHistoryRepo) Save(ctx context.Context, block domain.BlockRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.blocks[block.Height] = block
	return nil
}

func (r *BlockHistoryRepo) Latest(ctx context.Context, n int) ([]domain.BlockRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	heights := r.sortedHeights()
	if n > 0 && len(heights) > n {
		heights = heights[len(heights)-n:]
	}
	out := make([]domain.BlockRecord, 0, len(heights))
	for _, h := range heights {
		out = append(out, r.store.blocks[h])
	}
	return out, nil
}

func (r *BlockHistoryRepo) Prune(ctx context.Context, keep int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	heights := r.sortedHeights()
	keep = max(keep, 0)
	if len(heights) <= keep {
		return nil
	}
	for _, h := range heights[:len(heights)-keep] {
		delete(r.store.blocks, h)
	}
	return nil
}

// sortedHeights returns stored heights ascending. Caller holds the lock.
func (r *BlockHistoryRepo) sortedHeights() []uint64 {
	heights := make([]uint64, 0, len(r.store.blocks))
	for h := range r.store.blocks {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights
}
