package kernel

import (
	"fmt"

	"dronedispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned for the zero UUID and for the nil UUID
// (all zero bytes), which never identifies an entity.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID identifies orders, drones, missions and restaurants.
// It wraps google/uuid so that the domain depends on one identifier type and so
// that the nil UUID can be rejected at every aggregate boundary.
//
// Example:
//
//	id := kernel.NewUUID()
//	parsed, err := kernel.UUIDFromString(id.String())
//	if err != nil {
//	    // Handle malformed input
//	}
//	fmt.Println(parsed.IsEqual(id)) // true
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random (version 4) identifier.
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses the canonical textual form of an identifier.
//
// Returns:
//   - UUID: the parsed identifier
//   - error: ValueIsInvalidError for malformed input, ErrUUIDIsNotConstructed
//     for the nil UUID
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("invalid UUID format: %w", err))
	}

	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

// ParseOptionalUUID returns nil for an empty string and parses anything else
// with UUIDFromString. Used for optional references such as a restaurant filter.
func ParseOptionalUUID(s string) (*UUID, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // absent id is not an error
	}

	id, err := UUIDFromString(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// UUIDFromBytes builds an identifier from its 16-byte binary form, as stored in
// the database or received through the generated API types. The nil UUID is
// rejected.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("invalid UUID format: %w", err))
	}

	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}
	return newID, nil
}

// String returns the canonical lowercase textual form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying google/uuid value, used by the persistence layer
// as a column value.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether both identifiers are the same.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate reports ErrUUIDIsNotConstructed for the zero and nil UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

// EqualPtr reports whether two optional ids are both absent or both equal.
func EqualPtr(a, b *UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}
