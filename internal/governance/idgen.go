package governance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// HashIDs derives identifiers by hashing the operation timestamp, a
// monotonic counter, and caller-supplied entropy. The counter keeps ids
// unique within one timestamp; the entropy keeps them unique across
// engine instances.
type HashIDs struct {
	mu      sync.Mutex
	counter uint64
	entropy func() string
}

// NewHashIDs creates a generator with the given entropy source. A nil
// entropy falls back to random UUIDs.
func NewHashIDs(entropy func() string) *HashIDs {
	if entropy == nil {
		entropy = uuid.NewString
	}
	return &HashIDs{entropy: entropy}
}

// Next returns a 32-character hex identifier.
func (g *HashIDs) Next(now int64) string {
	g.mu.Lock()
	g.counter++
	seq := g.counter
	g.mu.Unlock()

	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s", now, seq, g.entropy())))
	return hex.EncodeToString(sum[:16])
}
