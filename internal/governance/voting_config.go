package governance

import "fmt"

// VotingConfig returns the stored global configuration, or the default
// when nothing has been written yet.
func (e *Engine) VotingConfig() (VotingConfig, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.votingConfig()
}

func (e *Engine) votingConfig() (VotingConfig, error) {
	cfg := DefaultVotingConfig()
	if _, err := e.getJSON(configKey(), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SetVotingConfig replaces the global configuration. Admin-gated,
// last-write-wins with a bumped version. Timing fields of proposals
// already created keep their derived timestamps; the quorum threshold
// applies to all subsequent tally evaluations.
func (e *Engine) SetVotingConfig(caller string, in VotingConfig) (*VotingConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.VotingPeriod <= 0 {
		return nil, fmt.Errorf("%w: voting period must be positive, got %d", ErrValidation, in.VotingPeriod)
	}
	if in.ExecutionDelay < 0 {
		return nil, fmt.Errorf("%w: execution delay must not be negative, got %d", ErrValidation, in.ExecutionDelay)
	}
	if in.QuorumBps < 1 || in.QuorumBps > 10000 {
		return nil, fmt.Errorf("%w: quorum must be between 1 and 10000 basis points, got %d", ErrValidation, in.QuorumBps)
	}
	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not change voting configuration", ErrUnauthorized, caller)
	}

	cur, err := e.votingConfig()
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	in.Version = cur.Version + 1
	in.UpdatedAt = now

	var b batch
	if err := b.put(configKey(), in); err != nil {
		return nil, err
	}
	b.emit(EventConfigUpdated, "voting", now, map[string]any{
		"voting_period":        in.VotingPeriod,
		"execution_delay":      in.ExecutionDelay,
		"quorum_bps":           in.QuorumBps,
		"require_registration": in.RequireRegistration,
		"version":              in.Version,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("voting config updated: version=%d quorum=%dbps", in.Version, in.QuorumBps)
	return &in, nil
}
