// Package xtream provides a Go client for the Xtream Codes API.
//
// Xtream Codes is an IPTV panel system that exposes a REST API for accessing
// live TV streams, video on demand (VOD), and TV series.
//
// # Basic Usage
//
//	client := xtream.NewClient("http://example.com:8080", "username", "password")
//
//	// Get server and user info
//	info, err := client.GetAuthInfo(ctx)
//
//	// List live stream categories
//	categories, err := client.GetLiveCategories(ctx)
//
//	// List all live streams
//	streams, err := client.GetLiveStreams(ctx)
//
// # Catalogue Ingestion
//
// FetchAll walks the live, VOD, and series catalogues and delivers them as
// classified playlist item batches, resolving provider category IDs to
// group names along the way:
//
//	stats, err := client.FetchAll(ctx, xtream.FetchOptions{
//		OnBatch: func(ctx context.Context, items []models.PlaylistItem) error {
//			return store.Put(ctx, owner, next(), items)
//		},
//	})
//
// # Flexible Types
//
// Xtream servers are wildly inconsistent about JSON types: the same field
// may arrive as a number on one server and a quoted string on another. The
// Flex* types absorb both representations, so callers never deal with raw
// JSON quirks.
package xtream
