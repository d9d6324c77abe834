package types

// SearchOptions holds the parameters of a full-text search.
type SearchOptions struct {
	// Query is free text. Blank queries match nothing.
	Query string

	// SpaceID restricts matches to one space when non-zero.
	SpaceID int64

	// Limit caps the number of results. Zero or negative means no cap.
	Limit int
}
