package governance

import (
	"fmt"
	"math"
)

const (
	// Risk tier thresholds: a node is high risk when it misses either floor.
	riskUptimeFloor      = 90.0
	riskPerformanceFloor = 70.0

	// Score history kept per node for trend analysis.
	historyDepth = 16
)

// MetricsInput is one telemetry report for a council node.
type MetricsInput struct {
	UptimePercent    float64
	PerformanceScore float64
	BlocksProduced   int64
}

func overallScore(uptime, performance float64) float64 {
	return (uptime + performance) / 2
}

func reliabilityScore(uptime, performance float64) float64 {
	return (uptime + performance) / 2
}

func riskLevelFor(uptime, performance float64) RiskLevel {
	if uptime < riskUptimeFloor || performance < riskPerformanceFloor {
		return RiskHigh
	}
	return RiskLow
}

// consistencyScore measures how stable the recent overall scores are:
// 100 for a steady node, dropping by twice the standard deviation of the
// history, floored at zero. Fewer than two samples score 100.
func consistencyScore(history []float64) float64 {
	if len(history) < 2 {
		return 100
	}
	var sum float64
	for _, v := range history {
		sum += v
	}
	mean := sum / float64(len(history))
	var variance float64
	for _, v := range history {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(history))

	penalty := math.Round(2 * math.Sqrt(variance))
	if penalty > 100 {
		penalty = 100
	}
	return 100 - penalty
}

// analyzeMetrics recomputes every derived score from the raw metrics.
func analyzeMetrics(m *NodeMetrics, now int64) *NodeBehaviorAnalysis {
	return &NodeBehaviorAnalysis{
		NodeID:      m.NodeID,
		Reliability: reliabilityScore(m.UptimePercent, m.PerformanceScore),
		Consistency: consistencyScore(m.History),
		Overall:     overallScore(m.UptimePercent, m.PerformanceScore),
		RiskLevel:   riskLevelFor(m.UptimePercent, m.PerformanceScore),
		Samples:     len(m.History),
		AnalyzedAt:  now,
	}
}

// UpdateNodeMetrics stores one telemetry report, mutating the node's
// record in place. The first report creates the record and fixes its
// owner; later reports are accepted only from the owner or an admin.
// Each report appends the implied overall score to the node's bounded
// history.
func (e *Engine) UpdateNodeMetrics(caller, nodeID string, in MetricsInput) (*NodeMetrics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if nodeID == "" {
		return nil, fmt.Errorf("%w: node id is required", ErrValidation)
	}
	if in.UptimePercent < 0 || in.UptimePercent > 100 {
		return nil, fmt.Errorf("%w: uptime must be between 0 and 100, got %.2f", ErrValidation, in.UptimePercent)
	}
	if in.PerformanceScore < 0 || in.PerformanceScore > 100 {
		return nil, fmt.Errorf("%w: performance score must be between 0 and 100, got %.2f", ErrValidation, in.PerformanceScore)
	}
	if in.BlocksProduced < 0 {
		return nil, fmt.Errorf("%w: blocks produced must not be negative, got %d", ErrValidation, in.BlocksProduced)
	}
	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not report node metrics", ErrUnauthorized, caller)
	}

	now := e.clock.Now()

	var m NodeMetrics
	existed, err := e.getJSON(metricsKey(nodeID), &m)
	if err != nil {
		return nil, err
	}
	if existed && caller != m.Owner && !e.auth.Admin(caller) {
		return nil, fmt.Errorf("%w: caller %s may not update council node %s owned by %s", ErrUnauthorized, caller, nodeID, m.Owner)
	}
	if !existed {
		m = NodeMetrics{NodeID: nodeID, Owner: caller, CreatedAt: now}
	}
	m.UptimePercent = in.UptimePercent
	m.PerformanceScore = in.PerformanceScore
	m.BlocksProduced = in.BlocksProduced
	m.UpdatedAt = now
	m.History = append(m.History, overallScore(in.UptimePercent, in.PerformanceScore))
	if len(m.History) > historyDepth {
		m.History = m.History[len(m.History)-historyDepth:]
	}

	var b batch
	if err := b.put(metricsKey(nodeID), &m); err != nil {
		return nil, err
	}
	if !existed {
		if err := e.bumpCounter(&b, counterNodes, 1); err != nil {
			return nil, err
		}
		if err := e.appendIndex(&b, indexKey(indexNodes), nodeID); err != nil {
			return nil, err
		}
	}
	b.emit(EventNodeMetricsUpdated, nodeID, now, map[string]any{
		"uptime_percent":    in.UptimePercent,
		"performance_score": in.PerformanceScore,
		"blocks_produced":   in.BlocksProduced,
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	return &m, nil
}

// AnalyzeNode recomputes and stores the derived scores of one node from
// its current metrics.
func (e *Engine) AnalyzeNode(caller, nodeID string) (*NodeBehaviorAnalysis, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.auth.Authorize(caller) {
		return nil, fmt.Errorf("%w: caller %s may not analyze nodes", ErrUnauthorized, caller)
	}
	m, err := e.loadMetrics(nodeID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	a := analyzeMetrics(m, now)

	var b batch
	if err := b.put(analysisKey(nodeID), a); err != nil {
		return nil, err
	}
	b.emit(EventCouncilNodeAnalyzed, nodeID, now, map[string]any{
		"reliability": a.Reliability,
		"consistency": a.Consistency,
		"overall":     a.Overall,
		"risk_level":  string(a.RiskLevel),
	})

	if err := e.commit(&b); err != nil {
		return nil, err
	}
	e.log.Printf("node analyzed: %s overall=%.1f risk=%s", nodeID, a.Overall, a.RiskLevel)
	return a, nil
}

func (e *Engine) loadMetrics(nodeID string) (*NodeMetrics, error) {
	var m NodeMetrics
	ok, err := e.getJSON(metricsKey(nodeID), &m)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: council node %s", ErrNotFound, nodeID)
	}
	return &m, nil
}

// GetNodeMetrics returns the raw metrics of one node.
func (e *Engine) GetNodeMetrics(nodeID string) (*NodeMetrics, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadMetrics(nodeID)
}

// GetNodeAnalysis returns the most recently stored analysis of one node.
func (e *Engine) GetNodeAnalysis(nodeID string) (*NodeBehaviorAnalysis, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var a NodeBehaviorAnalysis
	ok, err := e.getJSON(analysisKey(nodeID), &a)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: analysis for council node %s", ErrNotFound, nodeID)
	}
	return &a, nil
}

// ListNodeMetrics returns the metrics of every known node in first-seen
// order.
func (e *Engine) ListNodeMetrics() ([]*NodeMetrics, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.listMetrics()
}

func (e *Engine) listMetrics() ([]*NodeMetrics, error) {
	ids, err := e.index(indexKey(indexNodes))
	if err != nil {
		return nil, err
	}
	out := make([]*NodeMetrics, 0, len(ids))
	for _, id := range ids {
		m, err := e.loadMetrics(id)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
