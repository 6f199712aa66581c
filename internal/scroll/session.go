package scroll

import (
	"github.com/google/uuid"

	"github.com/roach88/synthscroll/internal/wire"
)

// Session is the driver's state. PageScrollPos is always within the page
// range. LastStatus is meaningful only when StatusKnown is set.
type Session struct {
	ID            string
	PageScrollPos int64
	LastStatus    wire.Phase
	StatusKnown   bool
	FreeScrolling bool
}

// IDGenerator creates session IDs.
// Implemented by UUIDv7Generator (production) and testutil.FixedIDGenerator.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session IDs.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 in hyphenated form.
//
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
