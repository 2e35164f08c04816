package governance

// Allowlist authorizes exactly the configured identities. An empty list
// authorizes everyone, which keeps single-operator and test setups usable
// without configuration.
type Allowlist struct {
	allowed map[string]bool
}

// NewAllowlist builds an Authorizer from the given identities.
func NewAllowlist(identities ...string) *Allowlist {
	a := &Allowlist{allowed: make(map[string]bool, len(identities))}
	for _, id := range identities {
		if id != "" {
			a.allowed[id] = true
		}
	}
	return a
}

func (a *Allowlist) Authorize(caller string) bool {
	if len(a.allowed) == 0 {
		return true
	}
	return a.allowed[caller]
}

// Admin reports whether the caller is explicitly listed. Unlike
// Authorize it never falls open: an empty list has no admins.
func (a *Allowlist) Admin(caller string) bool {
	return a.allowed[caller]
}
