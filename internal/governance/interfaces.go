package governance

// Collaborator interfaces. The engine owns the state machine and the
// arithmetic; identity checks, time, id entropy, payload execution, and
// event delivery are supplied from outside.

// Authorizer answers whether a caller may perform gated writes: voter
// registration, configuration updates, proposal cancellation, and
// strategy/telemetry operations. Admin is the stricter question asked
// by ownership checks: whether the caller is an explicitly configured
// administrator. Open mode authorizes everyone but makes no one an
// admin.
type Authorizer interface {
	Authorize(caller string) bool
	Admin(caller string) bool
}

// Clock supplies the operation timestamp in unix seconds. One reading is
// taken per operation and used consistently within it. Must be monotonic
// across operations.
type Clock interface {
	Now() int64
}

// Executor runs the payload of a passed proposal. An error finalizes the
// proposal as execution-failed; there is no automatic retry.
type Executor interface {
	Execute(p *Proposal) error
}

// IDGenerator produces unique entity identifiers for a given operation
// timestamp.
type IDGenerator interface {
	Next(now int64) string
}
