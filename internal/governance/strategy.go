package governance

import (
	"fmt"
	"sort"
)

// HighRiskThreshold is the fixed aggregate-risk ceiling for strategy
// execution. Candidate sets scoring above it are soft-rejected.
const HighRiskThreshold = 80.0

// StrategyInput is the caller-supplied part of a new voting strategy.
type StrategyInput struct {
	Name          string
	Kind          StrategyKind
	MaxCandidates int
	MinScore      float64
}

// CreateStrategy stores a candidate-selection configuration. Admin-gated.
func (e *Engine) CreateStrategy(caller string, in StrategyInput) (*VotingStrategy, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Name == "" {
		return nil, fmt.Errorf("%w: strategy name is required", ErrValidation)
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown strategy kind %q", ErrValidation, in.Kind)
	}
	if in.MaxCandidates < 1 {
		return nil, fmt.Errorf("%w: max candidates must be at least 1, got %d", ErrValidation, in.MaxCandidates)
	}
	if in.MinScore < 0 || in.MinScore > 100 {
		return nil, fmt.Errorf("%w: minimum score must be between 0 and 100, got %.2f", ErrValidation, in.MinScore)
	}
	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not create strategies", ErrUnauthorized, caller)
	}

	now := e.clock.Now()
	s := &VotingStrategy{
		ID:            e.ids.Next(now),
		Name:          in.Name,
		Kind:          in.Kind,
		MaxCandidates: in.MaxCandidates,
		MinScore:      in.MinScore,
		Owner:         caller,
		CreatedAt:     now,
	}

	var b batch
	if err := b.put(strategyKey(s.ID), s); err != nil {
		return nil, err
	}
	if err := e.bumpCounter(&b, counterStrategies, 1); err != nil {
		return nil, err
	}
	if err := e.appendIndex(&b, indexKey(indexStrategies), s.ID); err != nil {
		return nil, err
	}
	b.emit(EventStrategyCreated, s.ID, now, map[string]any{
		"name":           s.Name,
		"kind":           string(s.Kind),
		"max_candidates": s.MaxCandidates,
		"min_score":      s.MinScore,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("strategy created: %s %q kind=%s", s.ID, s.Name, s.Kind)
	return s, nil
}

// GetStrategy returns one stored strategy.
func (e *Engine) GetStrategy(id string) (*VotingStrategy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadStrategy(id)
}

func (e *Engine) loadStrategy(id string) (*VotingStrategy, error) {
	var s VotingStrategy
	ok, err := e.getJSON(strategyKey(id), &s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: strategy %s", ErrNotFound, id)
	}
	return &s, nil
}

// ListStrategies returns all strategies in creation order.
func (e *Engine) ListStrategies() ([]*VotingStrategy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids, err := e.index(indexKey(indexStrategies))
	if err != nil {
		return nil, err
	}
	out := make([]*VotingStrategy, 0, len(ids))
	for _, id := range ids {
		s, err := e.loadStrategy(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ExecuteStrategy resolves the strategy's candidate set from live node
// scores and gates it by aggregate risk. Above the risk threshold the run
// is soft-rejected: a risk alert is emitted, nothing is mutated, and the
// result reports Applied=false rather than an error. Dry runs select and
// score but skip the counter bump and audit entry.
func (e *Engine) ExecuteStrategy(caller, strategyID string, dryRun bool) (*StrategyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not execute strategies", ErrUnauthorized, caller)
	}
	s, err := e.loadStrategy(strategyID)
	if err != nil {
		return nil, err
	}
	if s.Kind == KindMLDriven {
		return nil, fmt.Errorf("%w: ml-driven candidate selection is not implemented", ErrValidation)
	}

	now := e.clock.Now()
	scored, err := e.liveAnalyses(now)
	if err != nil {
		return nil, err
	}
	candidates := selectCandidates(s.Kind, scored, s.MaxCandidates, s.MinScore)

	result := &StrategyResult{
		StrategyID: s.ID,
		Kind:       s.Kind,
		Candidates: candidateIDs(candidates),
		RiskScore:  aggregateRisk(candidates),
	}

	if len(candidates) == 0 {
		result.Reason = "no eligible candidates"
		return result, nil
	}
	if result.RiskScore > HighRiskThreshold {
		result.Reason = fmt.Sprintf("aggregate risk %.1f exceeds threshold %.0f", result.RiskScore, HighRiskThreshold)
		e.sink.Emit(Event{
			Type:     EventRiskAlertGenerated,
			EntityID: s.ID,
			At:       now,
			Fields: map[string]any{
				"risk_score": result.RiskScore,
				"threshold":  HighRiskThreshold,
				"candidates": result.Candidates,
			},
		})
		e.log.Printf("strategy %s soft-rejected: risk %.1f over threshold", s.ID, result.RiskScore)
		return result, nil
	}
	if dryRun {
		result.DryRun = true
		result.Reason = "dry run"
		return result, nil
	}

	s.Executions++
	exec := &StrategyExecution{
		ID:         e.ids.Next(now),
		StrategyID: s.ID,
		Caller:     caller,
		Candidates: result.Candidates,
		RiskScore:  result.RiskScore,
		ExecutedAt: now,
	}

	var b batch
	if err := b.put(strategyKey(s.ID), s); err != nil {
		return nil, err
	}
	if err := b.put(executionKey(exec.ID), exec); err != nil {
		return nil, err
	}
	if err := e.appendIndex(&b, executionIndexKey(s.ID), exec.ID); err != nil {
		return nil, err
	}
	if err := e.bumpCounter(&b, counterExecutions, 1); err != nil {
		return nil, err
	}
	b.emit(EventStrategyExecuted, s.ID, now, map[string]any{
		"execution_id": exec.ID,
		"candidates":   len(exec.Candidates),
		"risk_score":   exec.RiskScore,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	result.Applied = true
	result.ExecutionID = exec.ID
	e.log.Printf("strategy executed: %s run=%s candidates=%d risk=%.1f", s.ID, exec.ID, len(exec.Candidates), exec.RiskScore)
	return result, nil
}

// ListStrategyExecutions returns the audit entries of one strategy in run
// order.
func (e *Engine) ListStrategyExecutions(strategyID string) ([]*StrategyExecution, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, err := e.loadStrategy(strategyID); err != nil {
		return nil, err
	}
	ids, err := e.index(executionIndexKey(strategyID))
	if err != nil {
		return nil, err
	}
	out := make([]*StrategyExecution, 0, len(ids))
	for _, id := range ids {
		var x StrategyExecution
		ok, err := e.getJSON(executionKey(id), &x)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: strategy execution %s", ErrNotFound, id)
		}
		out = append(out, &x)
	}
	return out, nil
}

// Recommendations ranks all known council nodes by live overall score,
// best first, ties broken by node id. A limit of zero returns every node.
func (e *Engine) Recommendations(limit int) ([]*NodeBehaviorAnalysis, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	scored, err := e.liveAnalyses(e.clock.Now())
	if err != nil {
		return nil, err
	}
	rankAnalyses(scored)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// liveAnalyses recomputes the derived scores of every known node from its
// current metrics, without touching stored analysis records.
func (e *Engine) liveAnalyses(now int64) ([]*NodeBehaviorAnalysis, error) {
	metrics, err := e.listMetrics()
	if err != nil {
		return nil, err
	}
	out := make([]*NodeBehaviorAnalysis, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, analyzeMetrics(m, now))
	}
	return out, nil
}

// rankAnalyses orders by overall score descending, node id ascending.
func rankAnalyses(nodes []*NodeBehaviorAnalysis) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Overall != nodes[j].Overall {
			return nodes[i].Overall > nodes[j].Overall
		}
		return nodes[i].NodeID < nodes[j].NodeID
	})
}

// selectCandidates applies the kind-specific selector over ranked nodes.
func selectCandidates(kind StrategyKind, nodes []*NodeBehaviorAnalysis, maxCandidates int, minScore float64) []*NodeBehaviorAnalysis {
	eligible := make([]*NodeBehaviorAnalysis, 0, len(nodes))
	for _, n := range nodes {
		if n.Overall >= minScore {
			eligible = append(eligible, n)
		}
	}
	rankAnalyses(eligible)

	var out []*NodeBehaviorAnalysis
	switch kind {
	case KindPerformance:
		out = eligible
		if len(out) > maxCandidates {
			out = out[:maxCandidates]
		}
	case KindRiskAdjusted:
		for _, n := range eligible {
			if n.RiskLevel != RiskLow {
				continue
			}
			out = append(out, n)
			if len(out) == maxCandidates {
				break
			}
		}
	case KindDiversified:
		// At most half the slots (rounded up) may go to high-risk nodes.
		highCap := (maxCandidates + 1) / 2
		high := 0
		for _, n := range eligible {
			if n.RiskLevel == RiskHigh {
				if high == highCap {
					continue
				}
				high++
			}
			out = append(out, n)
			if len(out) == maxCandidates {
				break
			}
		}
	}
	return out
}

func candidateIDs(nodes []*NodeBehaviorAnalysis) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.NodeID)
	}
	return ids
}

// aggregateRisk is the mean inverse overall score of the candidate set.
func aggregateRisk(nodes []*NodeBehaviorAnalysis) float64 {
	if len(nodes) == 0 {
		return 0
	}
	var sum float64
	for _, n := range nodes {
		sum += 100 - n.Overall
	}
	return sum / float64(len(nodes))
}
