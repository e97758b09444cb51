package models

import "time"

// SystemMetrics is a point-in-time summary of API activity for the owner dashboard.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	Admissions               uint64    `json:"admissions"`
	Approvals                uint64    `json:"approvals"`
	Rejections               uint64    `json:"rejections"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
