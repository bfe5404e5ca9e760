package models

import (
	"net/url"
	"strings"

	"gorm.io/gorm"
)

// PlaylistType represents the kind of playlist source.
type PlaylistType string

const (
	// PlaylistTypeM3U represents a raw M3U/M3U8 playlist URL.
	PlaylistTypeM3U PlaylistType = "m3u"
	// PlaylistTypeXtream represents a structured Xtream Codes provider.
	PlaylistTypeXtream PlaylistType = "xtream"
)

// PlaylistStatus represents the sync state of a playlist.
// Transitions: pending -> syncing -> {synced, error, cancelled}; any
// terminal state returns to syncing when a new sync starts.
type PlaylistStatus string

const (
	// PlaylistStatusPending indicates the playlist has never been synced.
	PlaylistStatusPending PlaylistStatus = "pending"
	// PlaylistStatusSyncing indicates a sync is in progress.
	PlaylistStatusSyncing PlaylistStatus = "syncing"
	// PlaylistStatusSynced indicates the last sync committed successfully.
	PlaylistStatusSynced PlaylistStatus = "synced"
	// PlaylistStatusError indicates the last sync failed.
	PlaylistStatusError PlaylistStatus = "error"
	// PlaylistStatusCancelled indicates the last sync was cancelled.
	PlaylistStatusCancelled PlaylistStatus = "cancelled"
)

// IsTerminal returns true for states that permit starting a new sync
// without superseding an active one.
func (s PlaylistStatus) IsTerminal() bool {
	return s != PlaylistStatusSyncing
}

// Playlist is a configured playlist source and its last committed sync state.
// Transient sync state (cancellation token, loading flag) lives in the
// orchestrator and is never persisted.
type Playlist struct {
	BaseModel

	// Name is a user-friendly unique name for the playlist.
	Name string `gorm:"uniqueIndex;not null;size:255" json:"name"`

	// Type indicates whether this is an M3U or Xtream source.
	Type PlaylistType `gorm:"not null;size:20" json:"type"`

	// URL is the playlist URL or the Xtream server base URL.
	URL string `gorm:"not null;size:2048" json:"url"`

	// Username for Xtream authentication (unused for M3U).
	Username string `gorm:"size:255" json:"username,omitempty"`

	// Password for Xtream authentication (unused for M3U).
	Password string `gorm:"size:255" json:"password,omitempty"`

	// Enabled indicates whether this playlist participates in syncs.
	Enabled *bool `gorm:"default:true" json:"enabled"`

	// Status is the current sync status.
	Status PlaylistStatus `gorm:"not null;default:'pending';size:20" json:"status"`

	// Stats holds per-category counts from the last committed sync.
	Stats Stats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`

	// LastSyncedAt is the timestamp of the last successful sync.
	LastSyncedAt *Time `json:"last_synced_at,omitempty"`

	// LastError contains the error message from the last failed sync.
	LastError string `gorm:"size:4096" json:"last_error,omitempty"`

	// CronSchedule for automatic re-sync (optional).
	// Standard cron format: "0 */6 * * *" for every 6 hours.
	CronSchedule string `gorm:"size:100" json:"cron_schedule,omitempty"`
}

// TableName returns the table name for Playlist.
func (Playlist) TableName() string {
	return "playlists"
}

// IsM3U returns true if this is an M3U playlist.
func (p *Playlist) IsM3U() bool {
	return p.Type == PlaylistTypeM3U
}

// IsXtream returns true if this is an Xtream provider playlist.
func (p *Playlist) IsXtream() bool {
	return p.Type == PlaylistTypeXtream
}

// MarkSyncing sets the playlist status to syncing.
func (p *Playlist) MarkSyncing() {
	p.Status = PlaylistStatusSyncing
	p.LastError = ""
}

// MarkSynced records a committed sync with its stats.
func (p *Playlist) MarkSynced(stats Stats) {
	p.Status = PlaylistStatusSynced
	now := Now()
	p.LastSyncedAt = &now
	p.Stats = stats
	p.LastError = ""
}

// MarkFailed sets the playlist status to error with an error message.
func (p *Playlist) MarkFailed(err error) {
	p.Status = PlaylistStatusError
	if err != nil {
		p.LastError = err.Error()
	}
}

// MarkCancelled sets the playlist status to cancelled.
// Prior committed data is unaffected.
func (p *Playlist) MarkCancelled() {
	p.Status = PlaylistStatusCancelled
}

// Sanitize trims whitespace from user-provided fields.
func (p *Playlist) Sanitize() {
	p.Name = strings.TrimSpace(p.Name)
	p.URL = strings.TrimSpace(p.URL)
	p.Username = strings.TrimSpace(p.Username)
	p.Password = strings.TrimSpace(p.Password)
}

// Validate performs basic validation on the playlist.
func (p *Playlist) Validate() error {
	p.Sanitize()

	if p.Name == "" {
		return ErrNameRequired
	}
	if p.URL == "" {
		return ErrURLRequired
	}
	if _, err := url.Parse(p.URL); err != nil {
		return ErrInvalidURL
	}
	if p.Type != PlaylistTypeM3U && p.Type != PlaylistTypeXtream {
		return ErrInvalidPlaylistType
	}
	if p.Type == PlaylistTypeXtream && (p.Username == "" || p.Password == "") {
		return ErrXtreamCredentialsRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the playlist and generates a ULID.
// Updates are validated in the repository against the full struct; a GORM
// update hook would also fire for partial map updates, where the receiver is
// an empty model and validation can only fail.
func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return p.Validate()
}
