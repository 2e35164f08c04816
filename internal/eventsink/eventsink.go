// Package eventsink provides EventSink implementations: a logger sink, a
// database-backed event log, a channel sink for the dashboard, and a
// fan-out combinator. Delivery is best-effort everywhere; a failing sink
// never fails the operation that emitted the event.
package eventsink

import (
	"encoding/json"
	"time"

	"council-governance/internal/governance"
	"council-governance/internal/logger"
	"council-governance/internal/models"

	"gorm.io/gorm"
)

// Log writes each event through the debug logger.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log}
}

func (s *Log) Emit(ev governance.Event) {
	s.log.Printf("event %s entity=%s at=%d", ev.Type, ev.EntityID, ev.At)
}

// DB appends each event to the events table, giving an ordered,
// externally-observable log.
type DB struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDB(db *gorm.DB, log *logger.Logger) *DB {
	return &DB{db: db, log: log}
}

func (s *DB) Emit(ev governance.Event) {
	payload, err := json.Marshal(ev.Fields)
	if err != nil {
		s.log.Errorf("encode event %s: %v", ev.Type, err)
		return
	}
	rec := models.EventRecord{
		Type:      ev.Type,
		EntityID:  ev.EntityID,
		Payload:   payload,
		EmittedAt: time.Unix(ev.At, 0).UTC(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		s.log.Errorf("persist event %s: %v", ev.Type, err)
	}
}

// Channel forwards events to a channel, dropping when the receiver lags
// so emission never blocks an engine operation.
type Channel struct {
	ch chan<- governance.Event
}

func NewChannel(ch chan<- governance.Event) *Channel {
	return &Channel{ch: ch}
}

func (s *Channel) Emit(ev governance.Event) {
	select {
	case s.ch <- ev:
	default:
	}
}

// Multi fans one event out to several sinks in order.
type Multi struct {
	sinks []governance.EventSink
}

func NewMulti(sinks ...governance.EventSink) *Multi {
	return &Multi{sinks: sinks}
}

func (s *Multi) Emit(ev governance.Event) {
	for _, sink := range s.sinks {
		sink.Emit(ev)
	}
}
