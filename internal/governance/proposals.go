package governance

import "fmt"

// ProposalInput is the caller-supplied part of a new proposal.
type ProposalInput struct {
	Title       string
	Description string
	Target      string
	Payload     []byte
}

// CreateProposal opens a new proposal in the Active state. The voting
// window and execution time derive from the current configuration:
// votingEnd = created + votingPeriod, executionTime = votingEnd +
// executionDelay. The registry's total power is snapshotted into the
// proposal and caps its cast weight for life.
func (e *Engine) CreateProposal(caller string, in ProposalInput) (*Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller == "" {
		return nil, fmt.Errorf("%w: proposer identity is required", ErrValidation)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: proposal title is required", ErrValidation)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: proposal description is required", ErrValidation)
	}

	cfg, err := e.votingConfig()
	if err != nil {
		return nil, err
	}
	if cfg.RequireRegistration {
		var voter VoterInfo
		ok, err := e.getJSON(voterKey(caller), &voter)
		if err != nil {
			return nil, err
		}
		if !ok || !voter.Active {
			return nil, fmt.Errorf("%w: proposer %s is not a registered voter", ErrValidation, caller)
		}
	}

	snapshot, err := e.counter(counterTotalPower)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	p := &Proposal{
		ID:            e.ids.Next(now),
		Title:         in.Title,
		Description:   in.Description,
		Proposer:      caller,
		Target:        in.Target,
		Payload:       in.Payload,
		Status:        StatusActive,
		CreatedAt:     now,
		VotingStart:   now,
		VotingEnd:     now + cfg.VotingPeriod,
		PowerSnapshot: snapshot,
	}
	p.ExecutionTime = p.VotingEnd + cfg.ExecutionDelay

	var b batch
	if err := b.put(proposalKey(p.ID), p); err != nil {
		return nil, err
	}
	if err := e.bumpCounter(&b, counterProposals, 1); err != nil {
		return nil, err
	}
	if err := e.appendIndex(&b, indexKey(indexProposals), p.ID); err != nil {
		return nil, err
	}
	b.emit(EventProposalCreated, p.ID, now, map[string]any{
		"title":          p.Title,
		"proposer":       p.Proposer,
		"voting_end":     p.VotingEnd,
		"execution_time": p.ExecutionTime,
		"power_snapshot": p.PowerSnapshot,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("proposal created: %s %q by %s", p.ID, p.Title, p.Proposer)
	return p, nil
}

// GetProposal returns one proposal.
func (e *Engine) GetProposal(id string) (*Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadProposal(id)
}

func (e *Engine) loadProposal(id string) (*Proposal, error) {
	var p Proposal
	ok, err := e.getJSON(proposalKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, id)
	}
	return &p, nil
}

// ListProposals returns all proposals in creation order.
func (e *Engine) ListProposals() ([]*Proposal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids, err := e.index(indexKey(indexProposals))
	if err != nil {
		return nil, err
	}
	out := make([]*Proposal, 0, len(ids))
	for _, id := range ids {
		p, err := e.loadProposal(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListProposalsByStatus returns proposals with the given status, in
// creation order.
func (e *Engine) ListProposalsByStatus(status ProposalStatus) ([]*Proposal, error) {
	all, err := e.ListProposals()
	if err != nil {
		return nil, err
	}
	out := make([]*Proposal, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// CastVote records one ballot and folds its weight into the tally. Valid
// only inside the voting window (boundaries inclusive) while the proposal
// is Active or QuorumReached. One vote per voter per proposal, immutable
// once recorded. When cast weight first meets the quorum threshold the
// proposal moves to QuorumReached; the transition is one-way.
func (e *Engine) CastVote(caller, proposalID string, support bool, reason string) (*Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller == "" {
		return nil, fmt.Errorf("%w: voter identity is required", ErrValidation)
	}
	p, err := e.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusActive && p.Status != StatusQuorumReached {
		return nil, fmt.Errorf("%w: proposal %s is %s and no longer accepts votes", ErrStateConflict, p.ID, p.Status)
	}
	now := e.clock.Now()
	if now < p.VotingStart || now > p.VotingEnd {
		return nil, fmt.Errorf("%w: voting window for proposal %s is closed", ErrStateConflict, p.ID)
	}

	voter, err := e.loadVoter(caller)
	if err != nil {
		return nil, err
	}
	if !voter.Active {
		return nil, fmt.Errorf("%w: voter %s is inactive", ErrValidation, caller)
	}
	if voter.Power <= 0 {
		return nil, fmt.Errorf("%w: voter %s has no voting power", ErrValidation, caller)
	}

	var existing Vote
	dup, err := e.getJSON(voteKey(p.ID, caller), &existing)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: voter %s already voted on proposal %s", ErrStateConflict, caller, p.ID)
	}
	if p.CastWeight()+voter.Power > p.PowerSnapshot {
		return nil, fmt.Errorf("%w: vote weight %d would exceed the power snapshot of proposal %s", ErrStateConflict, voter.Power, p.ID)
	}

	cfg, err := e.votingConfig()
	if err != nil {
		return nil, err
	}

	vote := &Vote{
		ProposalID: p.ID,
		Voter:      caller,
		Support:    support,
		Weight:     voter.Power,
		Reason:     reason,
		CastAt:     now,
	}
	if support {
		p.YesWeight += voter.Power
	} else {
		p.NoWeight += voter.Power
	}
	p.VoteCount++
	voter.VotesCast++

	reachedQuorum := p.Status == StatusActive && p.QuorumMet(cfg.QuorumBps)
	if reachedQuorum {
		p.Status = StatusQuorumReached
	}

	var b batch
	if err := b.put(voteKey(p.ID, caller), vote); err != nil {
		return nil, err
	}
	if err := b.put(proposalKey(p.ID), p); err != nil {
		return nil, err
	}
	if err := b.put(voterKey(caller), voter); err != nil {
		return nil, err
	}
	if err := e.bumpCounter(&b, counterVotes, 1); err != nil {
		return nil, err
	}
	if err := e.appendIndex(&b, voteIndexKey(p.ID), caller); err != nil {
		return nil, err
	}
	b.emit(EventVoteCast, p.ID, now, map[string]any{
		"voter":      caller,
		"support":    support,
		"weight":     voter.Power,
		"yes_weight": p.YesWeight,
		"no_weight":  p.NoWeight,
	})
	if reachedQuorum {
		b.emit(EventQuorumReached, p.ID, now, map[string]any{
			"cast_weight":     p.CastWeight(),
			"required_quorum": p.RequiredQuorum(cfg.QuorumBps),
		})
	}

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("vote cast: proposal=%s voter=%s support=%t weight=%d", p.ID, caller, support, voter.Power)
	return p, nil
}

// GetVote returns one recorded ballot.
func (e *Engine) GetVote(proposalID, voter string) (*Vote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var v Vote
	ok, err := e.getJSON(voteKey(proposalID, voter), &v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: vote by %s on proposal %s", ErrNotFound, voter, proposalID)
	}
	return &v, nil
}

// ListVotes returns all ballots of one proposal in cast order.
func (e *Engine) ListVotes(proposalID string) ([]*Vote, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, err := e.loadProposal(proposalID); err != nil {
		return nil, err
	}
	voters, err := e.index(voteIndexKey(proposalID))
	if err != nil {
		return nil, err
	}
	out := make([]*Vote, 0, len(voters))
	for _, addr := range voters {
		var v Vote
		ok, err := e.getJSON(voteKey(proposalID, addr), &v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: vote by %s on proposal %s", ErrNotFound, addr, proposalID)
		}
		out = append(out, &v)
	}
	return out, nil
}

// ExecuteProposal finalizes a proposal once its execution time has
// arrived (boundary inclusive). A proposal passes when cast weight meets
// quorum and yes weight strictly exceeds no weight; passing runs the
// executor, whose failure finalizes the proposal as ExecutionFailed
// without retry. A proposal that does not pass finalizes as Failed.
// Finalizing an already-terminal proposal is a state conflict.
func (e *Engine) ExecuteProposal(caller, proposalID string) (*Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, fmt.Errorf("%w: proposal %s is already finalized as %s", ErrStateConflict, p.ID, p.Status)
	}
	now := e.clock.Now()
	if now < p.ExecutionTime {
		return nil, fmt.Errorf("%w: proposal %s is not executable until %d", ErrStateConflict, p.ID, p.ExecutionTime)
	}

	cfg, err := e.votingConfig()
	if err != nil {
		return nil, err
	}

	if p.Passed(cfg.QuorumBps) {
		if execErr := e.exec.Execute(p); execErr != nil {
			p.Status = StatusExecutionFailed
			e.log.Errorf("proposal %s execution failed: %v", p.ID, execErr)
		} else {
			p.Status = StatusExecuted
		}
	} else {
		p.Status = StatusFailed
	}
	p.FinalizedAt = now

	var b batch
	if err := b.put(proposalKey(p.ID), p); err != nil {
		return nil, err
	}
	b.emit(EventProposalExecuted, p.ID, now, map[string]any{
		"status":       p.Status.String(),
		"yes_weight":   p.YesWeight,
		"no_weight":    p.NoWeight,
		"cast_weight":  p.CastWeight(),
		"quorum_met":   p.QuorumMet(cfg.QuorumBps),
		"triggered_by": caller,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("proposal finalized: %s status=%s yes=%d no=%d", p.ID, p.Status, p.YesWeight, p.NoWeight)
	return p, nil
}

// CancelProposal withdraws an Active proposal. Admin-gated; the record is
// overwritten with the terminal status, never removed.
func (e *Engine) CancelProposal(caller, proposalID string) (*Proposal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not cancel proposals", ErrUnauthorized, caller)
	}
	p, err := e.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusActive {
		return nil, fmt.Errorf("%w: proposal %s is %s and cannot be cancelled", ErrStateConflict, p.ID, p.Status)
	}

	now := e.clock.Now()
	p.Status = StatusCancelled
	p.FinalizedAt = now

	var b batch
	if err := b.put(proposalKey(p.ID), p); err != nil {
		return nil, err
	}
	b.emit(EventProposalCancelled, p.ID, now, map[string]any{
		"cancelled_by": caller,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("proposal cancelled: %s by %s", p.ID, caller)
	return p, nil
}
