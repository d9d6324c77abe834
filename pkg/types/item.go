package types

import "time"

// Item is a tracked physical object. It always lives in exactly one space.
type Item struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	SpaceID             int64     `json:"space_id"`
	LocationWithinSpace string    `json:"location_within_space"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ItemView is an Item joined with the name of the space that holds it.
// Rank carries the bm25 score of a search hit; lower is more relevant.
type ItemView struct {
	Item
	SpaceName string  `json:"space_name"`
	Rank      float64 `json:"rank,omitempty"`
}

// NewItem carries the fields needed to create an item.
type NewItem struct {
	Name        string
	Space       SpaceRef
	Location    string
	Description string
}

// ItemFilter narrows ListItems. A zero SpaceID lists every item.
type ItemFilter struct {
	SpaceID int64
}
