package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/playsync/playsync/internal/models"
)

// getAllBatchRows is how many chunk rows are loaded per read batch during
// reconstruction. Each row already holds one item batch, so this bounds
// memory to a handful of batches at a time.
const getAllBatchRows = 16

// chunkRepo implements ChunkRepository using GORM.
type chunkRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(db *gorm.DB, logger *slog.Logger) *chunkRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &chunkRepo{db: db, logger: logger}
}

// Put upserts one chunk for (ownerID, chunkID).
func (r *chunkRepo) Put(ctx context.Context, ownerID string, chunkID int, items models.ItemList) error {
	chunk := &models.Chunk{
		OwnerID: ownerID,
		ChunkID: chunkID,
		Items:   items,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "chunk_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items"}),
	}).Create(chunk).Error
	if err != nil {
		return fmt.Errorf("putting chunk %s/%d: %w", ownerID, chunkID, err)
	}
	return nil
}

// GetAll reconstructs the grouped dataset for ownerID.
// Chunks are read in chunk_id order through a cursor, a few rows at a
// time; item order within each chunk is preserved, so items appear in
// original encounter order per group. Storage failures are logged and
// surfaced as an empty dataset.
func (r *chunkRepo) GetAll(ctx context.Context, ownerID string) *models.Dataset {
	dataset := models.NewDataset()

	// Cursor on chunk_id rather than offset pagination: the composite
	// (owner_id, chunk_id) key has no single autoincrement column to
	// batch on, and the cursor stays correct if rows are deleted between
	// reads.
	cursor := -1
	for {
		var chunks []models.Chunk
		err := r.db.WithContext(ctx).
			Where("owner_id = ? AND chunk_id > ?", ownerID, cursor).
			Order("chunk_id ASC").
			Limit(getAllBatchRows).
			Find(&chunks).Error
		if err != nil {
			r.logger.Error("reading chunks failed, returning empty dataset",
				slog.String("owner_id", ownerID),
				slog.String("error", err.Error()),
			)
			return models.NewDataset()
		}
		if len(chunks) == 0 {
			return dataset
		}

		for i := range chunks {
			for _, item := range chunks[i].Items {
				dataset.Add(item)
			}
		}
		cursor = chunks[len(chunks)-1].ChunkID
	}
}

// Move drains chunks from sourceOwnerID to targetOwnerID one at a time.
// Each chunk is upserted under the target and deleted from the source in a
// single transaction, so no reader ever observes the same chunk under both
// owners, and an interrupted move is completed by calling Move again.
func (r *chunkRepo) Move(ctx context.Context, sourceOwnerID, targetOwnerID string) error {
	var chunkIDs []int
	if err := r.db.WithContext(ctx).
		Model(&models.Chunk{}).
		Where("owner_id = ?", sourceOwnerID).
		Order("chunk_id ASC").
		Pluck("chunk_id", &chunkIDs).Error; err != nil {
		return fmt.Errorf("listing chunks for move: %w", err)
	}

	for _, chunkID := range chunkIDs {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var chunk models.Chunk
			if err := tx.Where("owner_id = ? AND chunk_id = ?", sourceOwnerID, chunkID).First(&chunk).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Already moved by a concurrent retry.
					return nil
				}
				return fmt.Errorf("loading chunk %d: %w", chunkID, err)
			}

			moved := &models.Chunk{
				OwnerID: targetOwnerID,
				ChunkID: chunk.ChunkID,
				Items:   chunk.Items,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "owner_id"}, {Name: "chunk_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"items"}),
			}).Create(moved).Error; err != nil {
				return fmt.Errorf("writing chunk %d under target: %w", chunkID, err)
			}

			if err := tx.Where("owner_id = ? AND chunk_id = ?", sourceOwnerID, chunkID).
				Delete(&models.Chunk{}).Error; err != nil {
				return fmt.Errorf("deleting chunk %d from source: %w", chunkID, err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("moving chunks %s -> %s: %w", sourceOwnerID, targetOwnerID, err)
		}
	}

	return nil
}

// DeleteAll removes all chunks for ownerID. Safe to call when none exist.
func (r *chunkRepo) DeleteAll(ctx context.Context, ownerID string) error {
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Chunk{}).Error; err != nil {
		return fmt.Errorf("deleting chunks for owner %s: %w", ownerID, err)
	}
	return nil
}

// Count returns the number of chunks stored for ownerID.
func (r *chunkRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Chunk{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Clear wipes every chunk row.
func (r *chunkRepo) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Chunk{}).Error; err != nil {
		return fmt.Errorf("clearing chunk store: %w", err)
	}
	return nil
}

// Ensure chunkRepo implements ChunkRepository at compile time.
var _ ChunkRepository = (*chunkRepo)(nil)
