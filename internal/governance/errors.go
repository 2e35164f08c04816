package governance

import "errors"

// Error kinds returned by engine operations. Callers branch with
// errors.Is; the wrapped message carries the specifics.
var (
	// ErrValidation marks malformed, missing, or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a failed witness/identity check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks a reference to an absent proposal, voter,
	// strategy, or node.
	ErrNotFound = errors.New("not found")
	// ErrStateConflict marks an operation that is valid in general but
	// not in the entity's current state: double votes, voting outside
	// the window, finalizing twice.
	ErrStateConflict = errors.New("state conflict")
)

// Soft rejections (a strategy run suppressed by the risk gate) are not
// errors: they come back as a StrategyResult with Applied=false.
