package collector

import (
	"sort"
	"sync"
)

// heightVotes tracks which validators prevoted and precommitted at one
// height. Duplicate votes from extra rounds collapse into one.
type heightVotes struct {
	prevotes   map[string]bool
	precommits map[string]bool
}

// NodeSample is the telemetry derived for one node over a window:
// uptime is precommit participation, performance is the share of expected
// consensus messages delivered, blocks produced is cumulative for the
// session.
type NodeSample struct {
	NodeID           string
	UptimePercent    float64
	PerformanceScore float64
	BlocksProduced   int64
}

// Window accumulates consensus participation per validator over a span of
// blocks. Votes for a height are folded into the totals when the next
// block arrives, mirroring how precommits for height H keep arriving
// until H+1 is committed.
type Window struct {
	mu          sync.Mutex
	pending     map[int64]*heightVotes
	firstHeight int64
	blocks      int64
	folds       int64
	prevotes    map[string]int64
	precommits  map[string]int64
	proposed    map[string]int64
	produced    map[string]int64 // survives Reset
}

func NewWindow() *Window {
	return &Window{
		pending:    make(map[int64]*heightVotes),
		prevotes:   make(map[string]int64),
		precommits: make(map[string]int64),
		proposed:   make(map[string]int64),
		produced:   make(map[string]int64),
	}
}

// ObserveVote records one consensus vote for a height.
func (w *Window) ObserveVote(height int64, validator string, precommit bool) {
	if validator == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	hv := w.pending[height]
	if hv == nil {
		hv = &heightVotes{prevotes: make(map[string]bool), precommits: make(map[string]bool)}
		w.pending[height] = hv
	}
	if precommit {
		hv.precommits[validator] = true
	} else {
		hv.prevotes[validator] = true
	}
}

// ObserveBlock credits the proposer, folds the previous height's votes
// into the window totals, and returns the number of blocks observed in
// the current window.
func (w *Window) ObserveBlock(height int64, proposer string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.blocks++
	if w.firstHeight == 0 {
		w.firstHeight = height
	}
	if proposer != "" {
		w.proposed[proposer]++
		w.produced[proposer]++
	}

	if height > w.firstHeight {
		w.folds++
		if hv, ok := w.pending[height-1]; ok {
			for v := range hv.prevotes {
				w.prevotes[v]++
			}
			for v := range hv.precommits {
				w.precommits[v]++
			}
		}
	}
	// Drop stale entries left behind by reconnect gaps.
	for h := range w.pending {
		if h < height {
			delete(w.pending, h)
		}
	}
	return w.blocks
}

// Snapshot computes samples for every node seen in the current window,
// sorted by node id. Returns nil until at least one height has folded.
func (w *Window) Snapshot() []NodeSample {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.folds == 0 {
		return nil
	}
	seen := make(map[string]bool)
	for v := range w.prevotes {
		seen[v] = true
	}
	for v := range w.precommits {
		seen[v] = true
	}
	for v := range w.proposed {
		seen[v] = true
	}

	samples := make([]NodeSample, 0, len(seen))
	for v := range seen {
		uptime := rate(w.precommits[v], w.folds)
		performance := rate(w.prevotes[v]+w.precommits[v], 2*w.folds)
		samples = append(samples, NodeSample{
			NodeID:           v,
			UptimePercent:    uptime,
			PerformanceScore: performance,
			BlocksProduced:   w.produced[v],
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].NodeID < samples[j].NodeID })
	return samples
}

// Reset starts a new window. Pending votes for in-flight heights and the
// cumulative produced counts carry over.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.blocks = 0
	w.folds = 0
	w.firstHeight = 0
	w.prevotes = make(map[string]int64)
	w.precommits = make(map[string]int64)
	w.proposed = make(map[string]int64)
}

func rate(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	r := 100 * float64(count) / float64(total)
	if r > 100 {
		r = 100
	}
	return r
}
