package types

import (
	"strconv"
	"strings"
	"time"
)

// Space is a named physical storage location.
type Space struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SpaceResult is returned by CreateSpace. Created is false when a space with
// the requested name already existed.
type SpaceResult struct {
	Space
	Created bool `json:"created"`
}

// SpaceRef addresses a space either by id or by name. ID wins when both are
// set. The HTTP API addresses spaces by id, the CLI by name.
type SpaceRef struct {
	ID   int64
	Name string
}

// SpaceByID returns a reference to the space with the given id.
func SpaceByID(id int64) SpaceRef {
	return SpaceRef{ID: id}
}

// SpaceByName returns a reference to the space with the given name.
func SpaceByName(name string) SpaceRef {
	return SpaceRef{Name: name}
}

// IsZero reports whether the reference names no space at all.
func (r SpaceRef) IsZero() bool {
	return r.ID <= 0 && strings.TrimSpace(r.Name) == ""
}

func (r SpaceRef) String() string {
	if r.ID > 0 {
		return "#" + strconv.FormatInt(r.ID, 10)
	}
	return strconv.Quote(r.Name)
}
