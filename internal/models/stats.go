package models

// Stats holds per-category item counts for one parse or sync pass.
// Counts only ever increase during a pass.
type Stats struct {
	Channels int `gorm:"default:0" json:"channels"`
	Movies   int `gorm:"default:0" json:"movies"`
	Series   int `gorm:"default:0" json:"series"`
}

// Add increments the count for the given category.
func (s *Stats) Add(c Category) {
	switch c {
	case CategoryChannels:
		s.Channels++
	case CategoryMovies:
		s.Movies++
	case CategorySeries:
		s.Series++
	}
}

// Count returns the count for the given category.
func (s Stats) Count(c Category) int {
	switch c {
	case CategoryChannels:
		return s.Channels
	case CategoryMovies:
		return s.Movies
	case CategorySeries:
		return s.Series
	}
	return 0
}

// Total returns the total item count across all categories.
func (s Stats) Total() int {
	return s.Channels + s.Movies + s.Series
}
