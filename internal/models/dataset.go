package models

import "sort"

// Dataset is the reconstructed, grouped view of one owner's chunks:
// category -> group -> items in original encounter order.
type Dataset struct {
	Groups map[Category]map[string][]PlaylistItem
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Groups: make(map[Category]map[string][]PlaylistItem)}
}

// Add appends an item to its category/group bucket, preserving order.
func (d *Dataset) Add(item PlaylistItem) {
	group := item.Group
	if group == "" {
		group = DefaultGroup
	}
	byGroup, ok := d.Groups[item.Category]
	if !ok {
		byGroup = make(map[string][]PlaylistItem)
		d.Groups[item.Category] = byGroup
	}
	byGroup[group] = append(byGroup[group], item)
}

// IsEmpty returns true if the dataset holds no items.
func (d *Dataset) IsEmpty() bool {
	for _, byGroup := range d.Groups {
		for _, items := range byGroup {
			if len(items) > 0 {
				return false
			}
		}
	}
	return true
}

// Items returns the items of one category/group bucket.
func (d *Dataset) Items(category Category, group string) []PlaylistItem {
	byGroup, ok := d.Groups[category]
	if !ok {
		return nil
	}
	return byGroup[group]
}

// GroupNames returns the sorted group names within a category.
func (d *Dataset) GroupNames(category Category) []string {
	byGroup, ok := d.Groups[category]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats recomputes per-category counts from the dataset contents.
func (d *Dataset) Stats() Stats {
	var stats Stats
	for category, byGroup := range d.Groups {
		for _, items := range byGroup {
			switch category {
			case CategoryChannels:
				stats.Channels += len(items)
			case CategoryMovies:
				stats.Movies += len(items)
			case CategorySeries:
				stats.Series += len(items)
			}
		}
	}
	return stats
}
