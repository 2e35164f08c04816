// Package models defines the database models for governance persistence.
package models

import "time"

// KVRecord is one entity row in the flat governance key-value table.
// Keys carry a single-byte entity prefix followed by the entity id.
type KVRecord struct {
	Key       string `gorm:"primaryKey;size:512"`
	Value     []byte `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
