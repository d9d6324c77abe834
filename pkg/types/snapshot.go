package types

// ImportResult counts what Import restored. Skipped counts snapshot lines
// that were not valid JSON.
type ImportResult struct {
	Spaces  int `json:"spaces"`
	Items   int `json:"items"`
	Moves   int `json:"moves"`
	Skipped int `json:"skipped"`
}
