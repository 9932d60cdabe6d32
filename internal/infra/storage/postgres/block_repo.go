package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// BlockHistoryRepo implements storage.BlockHistoryRepository using PostgreSQL.
type BlockHistoryRepo struct {
	db      *DB
	network string
}

// NewBlockHistoryRepo creates a block history scoped to one network.
func NewBlockHistoryRepo(db *DB, network string) *BlockHistoryRepo {
	return &BlockHistoryRepo{db: db, network: network}
}

type blockRow struct {
	Height    int64  `db:"height"`
	Timestamp string `db:"block_timestamp"`
	Hash      string `db:"block_hash"`
}

// Save upserts the block at its height.
func (r *BlockHistoryRepo) Save(ctx context.Context, block domain.BlockRecord) error {
	query := `
		INSERT INTO block_heights (network, height, block_timestamp, block_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (network, height) DO UPDATE SET
			block_timestamp = EXCLUDED.block_timestamp,
			block_hash = EXCLUDED.block_hash
	`
	if _, err := r.db.ExecContext(ctx, query, r.network, int64(block.Height), block.Timestamp, block.Hash); err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

// Latest returns up to n of the highest blocks, ascending by height.
func (r *BlockHistoryRepo) Latest(ctx context.Context, n int) ([]domain.BlockRecord, error) {
	query := `
		SELECT height, block_timestamp, block_hash FROM block_heights
		WHERE network = $1 ORDER BY height DESC`
	args := []any{r.network}
	if n > 0 {
		query += ` LIMIT $2`
		args = append(args, n)
	}

	var rows []blockRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	return toAscending(rows), nil
}

// Prune keeps only the keep highest heights for the network.
func (r *BlockHistoryRepo) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM block_heights WHERE network = $1`, r.network); err != nil {
			return fmt.Errorf("failed to clear blocks: %w", err)
		}
		return nil
	}

	query := `
		DELETE FROM block_heights
		WHERE network = $1 AND height < (
			SELECT COALESCE(MIN(height), 0) FROM (
				SELECT height FROM block_heights WHERE network = $1
				ORDER BY height DESC LIMIT $2
			) AS newest
		)`
	if _, err := r.db.ExecContext(ctx, query, r.network, keep); err != nil {
		return fmt.Errorf("failed to prune blocks: %w", err)
	}
	return nil
}

// toAscending converts rows fetched newest-first into ascending records.
func toAscending(rows []blockRow) []domain.BlockRecord {
	out := make([]domain.BlockRecord, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = domain.BlockRecord{
			Height:    uint64(row.Height),
			Timestamp: row.Timestamp,
			Hash:      row.Hash,
		}
	}
	return out
}
