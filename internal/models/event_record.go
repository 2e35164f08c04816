package models

import "time"

// EventRecord is one entry of the externally-observable governance event log.
// Rows are append-only; the auto-increment ID preserves emission order.
type EventRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Type      string    `gorm:"size:64;index"`
	EntityID  string    `gorm:"size:128;index"`
	Payload   []byte    // JSON-encoded event fields
	EmittedAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
