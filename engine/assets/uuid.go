package assets

import "github.com/google/uuid"

// UUID identifies an asset across persistence. Zero is reserved as
// "invalid" (§3 Identifiers). The engine-visible UUID is a 64-bit
// projection of a random google/uuid.UUID rather than the full 128 bits —
// the registry's persistence format and embedded-asset URI scheme
// (`@<parent_uuid>-<data_id>/<name>.<ext>`) are both specified in terms of
// a single unsigned integer, so we fold the generated UUID down rather
// than inventing our own RNG on top of the teacher's stack.
type UUID uint64

// InvalidUUID is the reserved "no asset" sentinel.
const InvalidUUID UUID = 0

// NewUUID returns a fresh non-zero asset identifier.
func NewUUID() UUID {
	for {
		u := uuid.New()
		hi := uint64(0)
		for i := 0; i < 8; i++ {
			hi = hi<<8 | uint64(u[i])
		}
		if id := UUID(hi &^ (1 << 63)); id != InvalidUUID {
			return id
		}
	}
}
