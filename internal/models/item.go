package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DefaultGroup is assigned to items whose metadata carries no group title.
const DefaultGroup = "Uncategorized"

// PlaylistItem is a single classified entry from a playlist source.
// Items are immutable once categorized.
type PlaylistItem struct {
	// Title is the display title extracted from the metadata line.
	Title string `json:"title"`

	// URL is the stream URL. Required; treated as unique within a source.
	URL string `json:"url"`

	// Logo is the channel/poster image URL, if present.
	Logo string `json:"logo,omitempty"`

	// Group is the free-text group label, DefaultGroup if absent.
	Group string `json:"group"`

	// Category is derived from the URL shape, never user-supplied.
	Category Category `json:"category"`

	// ExtID is an opaque provider-specific identifier, if present.
	ExtID string `json:"ext_id,omitempty"`
}

// ItemList is an ordered slice of items stored as a JSON column.
type ItemList []PlaylistItem

// Value implements driver.Valuer so GORM can persist the list as JSON text.
func (l ItemList) Value() (driver.Value, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshaling item list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval.
func (l *ItemList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type for ItemList: %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshaling item list: %w", err)
	}
	return nil
}

// GormDataType returns the GORM data type for ItemList.
func (ItemList) GormDataType() string {
	return "text"
}
