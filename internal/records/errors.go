package records

import "errors"

// Sentinel errors returned by the store. Details are attached with %w
// wrapping, so match them with errors.Is.
var (
	// ErrValidation: a mandatory field is empty, or marks is not a whole
	// number in [0, 100].
	ErrValidation = errors.New("validation error")

	// ErrDuplicateKey: another record already uses the registration number.
	ErrDuplicateKey = errors.New("duplicate registration number")

	// ErrNotFound: the position is outside the current sequence.
	ErrNotFound = errors.New("record not found")

	// ErrConflict: another process saved the slot since this store last
	// read it. The store has reloaded; positions may have moved, so the
	// caller should look again before retrying.
	ErrConflict = errors.New("records changed by another writer")

	// ErrCorruptSlot: the persisted sequence cannot be decoded or breaks
	// an invariant.
	ErrCorruptSlot = errors.New("corrupt records slot")
)
