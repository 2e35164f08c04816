package governance

import "fmt"

// RegisterVoter creates or overwrites a registry entry. Registration is
// gated by the authorizer. Re-registering keeps the address but replaces
// power and timestamp and resets the cast-vote counter; the running
// total-power counter moves by the power delta in the same commit.
func (e *Engine) RegisterVoter(caller, address string, power int64) (*VoterInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if address == "" {
		return nil, fmt.Errorf("%w: voter address is required", ErrValidation)
	}
	if power <= 0 {
		return nil, fmt.Errorf("%w: voting power must be positive, got %d", ErrValidation, power)
	}
	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not register voters", ErrUnauthorized, caller)
	}

	now := e.clock.Now()

	var prev VoterInfo
	existed, err := e.getJSON(voterKey(address), &prev)
	if err != nil {
		return nil, err
	}

	voter := &VoterInfo{
		Address:      address,
		Power:        power,
		RegisteredAt: now,
		Active:       true,
	}

	var b batch
	if err := b.put(voterKey(address), voter); err != nil {
		return nil, err
	}
	delta := power
	if existed {
		delta = power - prev.Power
	} else {
		if err := e.bumpCounter(&b, counterVoters, 1); err != nil {
			return nil, err
		}
		if err := e.appendIndex(&b, indexKey(indexVoters), address); err != nil {
			return nil, err
		}
	}
	if delta != 0 {
		if err := e.bumpCounter(&b, counterTotalPower, delta); err != nil {
			return nil, err
		}
	}
	b.emit(EventVoterRegistered, address, now, map[string]any{
		"power":         power,
		"re_registered": existed,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("voter registered: %s power=%d", address, power)
	return voter, nil
}

// GetVoter returns one registry entry.
func (e *Engine) GetVoter(address string) (*VoterInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadVoter(address)
}

func (e *Engine) loadVoter(address string) (*VoterInfo, error) {
	var v VoterInfo
	ok, err := e.getJSON(voterKey(address), &v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: voter %s", ErrNotFound, address)
	}
	return &v, nil
}

// ListVoters returns all registry entries in registration order.
func (e *Engine) ListVoters() ([]*VoterInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	addrs, err := e.index(indexKey(indexVoters))
	if err != nil {
		return nil, err
	}
	voters := make([]*VoterInfo, 0, len(addrs))
	for _, addr := range addrs {
		v, err := e.loadVoter(addr)
		if err != nil {
			return nil, err
		}
		voters = append(voters, v)
	}
	return voters, nil
}

// TotalVotingPower returns the running sum of all registered power,
// maintained transactionally on every registry write.
func (e *Engine) TotalVotingPower() (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.counter(counterTotalPower)
}

// VoterCount returns the number of registered voters.
func (e *Engine) VoterCount() (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.counter(counterVoters)
}
