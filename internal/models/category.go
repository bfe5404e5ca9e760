package models

import "strings"

// Category classifies a playlist item by the shape of its stream URL.
// It is derived during parsing and never supplied by the user.
type Category string

const (
	// CategoryChannels is the default category for live streams.
	CategoryChannels Category = "channels"
	// CategoryMovies is assigned to VOD movie streams.
	CategoryMovies Category = "movies"
	// CategorySeries is assigned to series/episode streams.
	CategorySeries Category = "series"
)

// Categories lists all item categories in display order.
var Categories = []Category{CategoryChannels, CategoryMovies, CategorySeries}

// IsValid returns true for a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryChannels, CategoryMovies, CategorySeries:
		return true
	}
	return false
}

// Categorize derives the category from a stream URL.
// Movie paths take precedence over series paths, which take precedence over
// the channel default. The check is case-insensitive and deterministic: the
// same URL always yields the same category.
func Categorize(rawURL string) Category {
	lower := strings.ToLower(rawURL)

	// Strip scheme and query so only the path contributes segments.
	if idx := strings.Index(lower, "://"); idx >= 0 {
		lower = lower[idx+3:]
	}
	if idx := strings.IndexAny(lower, "?#"); idx >= 0 {
		lower = lower[:idx]
	}

	for _, segment := range strings.Split(lower, "/") {
		if segment == "movie" || segment == "movies" {
			return CategoryMovies
		}
	}
	if strings.Contains(lower, "series") {
		return CategorySeries
	}
	return CategoryChannels
}
