package models

import "time"

// TempOwnerPrefix marks the staging namespace for in-progress syncs.
const TempOwnerPrefix = "temp:"

// TempOwnerID returns the staging owner id for a playlist.
// It is deterministic so leftovers from a crashed sync can always be found
// and removed before the next attempt.
func TempOwnerID(playlistID ULID) string {
	return TempOwnerPrefix + playlistID.String()
}

// OwnerID returns the committed owner id for a playlist.
func OwnerID(playlistID ULID) string {
	return playlistID.String()
}

// Chunk is one persisted batch of playlist items.
//
// Chunks are keyed by (owner_id, chunk_id). The owner id is either a
// playlist's committed id or its temp: staging id; the two namespaces are
// wholly independent and never read together. Chunk ids increase
// monotonically in write order within one sync session, starting at 0.
type Chunk struct {
	// OwnerID namespaces the chunk to a playlist or its staging identity.
	OwnerID string `gorm:"primaryKey;size:64" json:"owner_id"`

	// ChunkID orders chunks within an owner.
	ChunkID int `gorm:"primaryKey;autoIncrement:false" json:"chunk_id"`

	// Items is the ordered batch, serialized as JSON.
	Items ItemList `gorm:"type:text;not null" json:"items"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Chunk.
func (Chunk) TableName() string {
	return "chunks"
}
