package models

import "time"

// MetricsSample stores one observed telemetry window per council node.
// All samples are kept (no unique constraint) so score history can be
// charted later.
type MetricsSample struct {
	ID               uint      `gorm:"primaryKey"`
	NodeID           string    `gorm:"size:128;index"`
	Moniker          string    `gorm:"size:128"`
	UptimePercent    float64   `gorm:"index"`
	PerformanceScore float64
	BlocksProduced   int64
	SampledAt        time.Time `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
