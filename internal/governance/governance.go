// Package governance implements the weighted proposal-voting engine: the
// proposal lifecycle state machine, per-voter weighted tallying with a
// basis-point quorum gate, time-gated execution, the voter registry, and
// the strategy/recommendation and council-node scoring subsystems that
// feed it.
//
// Every write operation reads the clock once, validates fully, then
// commits all of its key-value writes as a single atomic batch. Events go
// to the sink only after the batch has committed.
package governance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"council-governance/internal/kvstore"
	"council-governance/internal/logger"
)

// Engine is the governance core. All writes are serialized under one
// lock, matching the strictly sequential commit order the tally
// arithmetic assumes; reads take the shared side.
type Engine struct {
	mu    sync.RWMutex
	store kvstore.Store
	auth  Authorizer
	exec  Executor
	sink  EventSink
	clock Clock
	ids   IDGenerator
	log   *logger.Logger
}

// Options wires the engine's collaborators. Store is required; every
// other field has a working default.
type Options struct {
	Store    kvstore.Store
	Auth     Authorizer
	Executor Executor
	Events   EventSink
	Clock    Clock
	IDs      IDGenerator
	Log      *logger.Logger
}

// New creates an engine over the given store.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrValidation)
	}
	e := &Engine{
		store: opts.Store,
		auth:  opts.Auth,
		exec:  opts.Executor,
		sink:  opts.Events,
		clock: opts.Clock,
		ids:   opts.IDs,
		log:   opts.Log,
	}
	if e.log == nil {
		e.log = logger.New(false)
	}
	if e.auth == nil {
		e.auth = NewAllowlist()
	}
	if e.exec == nil {
		e.exec = NewLogExecutor(e.log)
	}
	if e.sink == nil {
		e.sink = NopSink{}
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.ids == nil {
		e.ids = NewHashIDs(nil)
	}
	return e, nil
}

// batch accumulates the writes and events of one operation. Nothing is
// observable until commit; a validation failure before commit leaves no
// trace.
type batch struct {
	writes []kvstore.Write
	events []Event
}

func (b *batch) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b.writes = append(b.writes, kvstore.Write{Key: key, Value: data})
	return nil
}

func (b *batch) setCounter(name string, v int64) {
	b.writes = append(b.writes, kvstore.Write{
		Key:   counterKey(name),
		Value: []byte(strconv.FormatInt(v, 10)),
	})
}

func (b *batch) emit(typ, entityID string, at int64, fields map[string]any) {
	b.events = append(b.events, Event{Type: typ, EntityID: entityID, At: at, Fields: fields})
}

func (e *Engine) commit(b *batch) error {
	if err := e.store.Apply(b.writes); err != nil {
		return fmt.Errorf("commit governance batch: %w", err)
	}
	for _, ev := range b.events {
		e.sink.Emit(ev)
	}
	return nil
}

func (e *Engine) getJSON(key []byte, v any) (bool, error) {
	data, ok, err := e.store.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (e *Engine) counter(name string) (int64, error) {
	data, ok, err := e.store.Get(counterKey(name))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %w", name, err)
	}
	return n, nil
}

func (e *Engine) bumpCounter(b *batch, name string, delta int64) error {
	cur, err := e.counter(name)
	if err != nil {
		return err
	}
	b.setCounter(name, cur+delta)
	return nil
}

func (e *Engine) index(key []byte) ([]string, error) {
	var ids []string
	if _, err := e.getJSON(key, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (e *Engine) appendIndex(b *batch, key []byte, id string) error {
	ids, err := e.index(key)
	if err != nil {
		return err
	}
	return b.put(key, append(ids, id))
}

// Stats returns the engine's running counters.
func (e *Engine) Stats() (*Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var st Stats
	var err error
	if st.Proposals, err = e.counter(counterProposals); err != nil {
		return nil, err
	}
	if st.Votes, err = e.counter(counterVotes); err != nil {
		return nil, err
	}
	if st.Voters, err = e.counter(counterVoters); err != nil {
		return nil, err
	}
	if st.TotalVotingPower, err = e.counter(counterTotalPower); err != nil {
		return nil, err
	}
	if st.Strategies, err = e.counter(counterStrategies); err != nil {
		return nil, err
	}
	if st.StrategyExecutions, err = e.counter(counterExecutions); err != nil {
		return nil, err
	}
	if st.CouncilNodes, err = e.counter(counterNodes); err != nil {
		return nil, err
	}
	return &st, nil
}
