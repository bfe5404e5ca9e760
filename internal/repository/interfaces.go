// Package repository provides persistent storage access for playsync entities.
package repository

import (
	"context"

	"github.com/playsync/playsync/internal/models"
)

// ChunkRepository is the chunked item store. Chunks are namespaced by owner
// id; a playlist's committed id and its temp: staging id are independent
// owners whose data is never read together.
type ChunkRepository interface {
	// Put upserts one chunk. Writing an existing (ownerID, chunkID) pair
	// overwrites it.
	Put(ctx context.Context, ownerID string, chunkID int, items models.ItemList) error

	// GetAll reads every chunk for ownerID in chunkID order and
	// reconstructs the grouped dataset. An owner with no chunks yields an
	// empty dataset; storage failures are logged and also yield an empty
	// dataset, so callers treat "no data" as "sync again", never as a
	// distinguishable loss signal.
	GetAll(ctx context.Context, ownerID string) *models.Dataset

	// Move reassigns every chunk from sourceOwnerID to targetOwnerID,
	// preserving chunk ids. Each chunk is written under the target and
	// deleted from the source in one transaction before the next is
	// touched, so an interrupted move loses only the unmoved tail and is
	// completed by retrying.
	Move(ctx context.Context, sourceOwnerID, targetOwnerID string) error

	// DeleteAll removes all chunks for ownerID. No-op for unknown owners.
	DeleteAll(ctx context.Context, ownerID string) error

	// Count returns the number of chunks stored for ownerID.
	Count(ctx context.Context, ownerID string) (int64, error)

	// Clear wipes the entire chunk store. Used only for full reset.
	Clear(ctx context.Context) error
}

// PlaylistRepository manages playlist descriptors.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id models.ULID) (*models.Playlist, error)
	GetByName(ctx context.Context, name string) (*models.Playlist, error)
	GetAll(ctx context.Context) ([]*models.Playlist, error)
	GetEnabled(ctx context.Context) ([]*models.Playlist, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	UpdateStatus(ctx context.Context, id models.ULID, status models.PlaylistStatus, lastError string) error
	UpdateSynced(ctx context.Context, id models.ULID, stats models.Stats) error
	Delete(ctx context.Context, id models.ULID) error
}
