package types

import (
	"fmt"
	"strings"
)

// MemoryPath opens a private in-memory database. Each Attach gets a fresh,
// empty store.
const MemoryPath = ":memory:"

// Config holds the parameters for Inventory.Attach.
type Config struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%w: database path must not be empty", ErrInvalidInput)
	}
	return nil
}

// InMemory reports whether the config points at a private in-memory database.
func (c Config) InMemory() bool {
	return c.DBPath == MemoryPath
}
