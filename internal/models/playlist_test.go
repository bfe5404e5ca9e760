package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validM3UPlaylist() *Playlist {
	return &Playlist{
		Name: "test",
		Type: PlaylistTypeM3U,
		URL:  "http://example.com/playlist.m3u",
	}
}

func TestPlaylistValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Playlist)
		wantErr error
	}{
		{"valid m3u", func(p *Playlist) {}, nil},
		{"valid xtream", func(p *Playlist) {
			p.Type = PlaylistTypeXtream
			p.Username = "user"
			p.Password = "pass"
		}, nil},
		{"missing name", func(p *Playlist) { p.Name = "" }, ErrNameRequired},
		{"whitespace name", func(p *Playlist) { p.Name = "   " }, ErrNameRequired},
		{"missing url", func(p *Playlist) { p.URL = "" }, ErrURLRequired},
		{"invalid type", func(p *Playlist) { p.Type = "rss" }, ErrInvalidPlaylistType},
		{"xtream without username", func(p *Playlist) {
			p.Type = PlaylistTypeXtream
			p.Password = "pass"
		}, ErrXtreamCredentialsRequired},
		{"xtream without password", func(p *Playlist) {
			p.Type = PlaylistTypeXtream
			p.Username = "user"
		}, ErrXtreamCredentialsRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validM3UPlaylist()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlaylistSanitize(t *testing.T) {
	p := &Playlist{
		Name:     "  spaced  ",
		URL:      " http://example.com/p.m3u ",
		Username: " user ",
		Password: " pass ",
	}
	p.Sanitize()

	assert.Equal(t, "spaced", p.Name)
	assert.Equal(t, "http://example.com/p.m3u", p.URL)
	assert.Equal(t, "user", p.Username)
	assert.Equal(t, "pass", p.Password)
}

func TestPlaylistStatusTransitions(t *testing.T) {
	p := validM3UPlaylist()
	p.Status = PlaylistStatusPending

	p.MarkSyncing()
	assert.Equal(t, PlaylistStatusSyncing, p.Status)
	assert.False(t, p.Status.IsTerminal())

	p.MarkSynced(Stats{Channels: 5, Movies: 2, Series: 1})
	assert.Equal(t, PlaylistStatusSynced, p.Status)
	assert.True(t, p.Status.IsTerminal())
	require.NotNil(t, p.LastSyncedAt)
	assert.Equal(t, 8, p.Stats.Total())
	assert.Empty(t, p.LastError)

	p.MarkFailed(errors.New("connection refused"))
	assert.Equal(t, PlaylistStatusError, p.Status)
	assert.Equal(t, "connection refused", p.LastError)

	// A new sync clears the previous error.
	p.MarkSyncing()
	assert.Empty(t, p.LastError)

	p.MarkCancelled()
	assert.Equal(t, PlaylistStatusCancelled, p.Status)
	assert.True(t, p.Status.IsTerminal())
}

func TestPlaylistTypeHelpers(t *testing.T) {
	p := validM3UPlaylist()
	assert.True(t, p.IsM3U())
	assert.False(t, p.IsXtream())

	p.Type = PlaylistTypeXtream
	assert.False(t, p.IsM3U())
	assert.True(t, p.IsXtream())
}

func TestTempOwnerID(t *testing.T) {
	id := NewULID()

	assert.Equal(t, id.String(), OwnerID(id))
	assert.Equal(t, "temp:"+id.String(), TempOwnerID(id))
	// Deterministic: a restarted sync finds the same staging namespace.
	assert.Equal(t, TempOwnerID(id), TempOwnerID(id))
}
