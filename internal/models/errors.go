package models

import "errors"

// Common validation errors for models.
var (
	// ErrNameRequired indicates a required name field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrURLRequired indicates a required URL field is empty.
	ErrURLRequired = errors.New("url is required")

	// ErrInvalidURL indicates a malformed URL.
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidPlaylistType indicates an invalid playlist type.
	ErrInvalidPlaylistType = errors.New("invalid playlist type: must be 'm3u' or 'xtream'")

	// ErrXtreamCredentialsRequired indicates missing Xtream credentials.
	ErrXtreamCredentialsRequired = errors.New("username and password are required for xtream playlists")

	// ErrPlaylistNotFound indicates a lookup for an unknown playlist.
	ErrPlaylistNotFound = errors.New("playlist not found")
)
