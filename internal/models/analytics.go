package models

import "time"

// VisitorSession tracks one browser session. last_counted_at holds the last
// calendar date this session was counted toward the unique-visitor total.
type VisitorSession struct {
	ID            string
	SessionID     string
	IPAddress     *string
	UserAgent     *string
	LastSeen      time.Time
	LastCountedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type VisitorStat struct {
	ID             string
	Date           time.Time
	Views          int64
	UniqueVisitors int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type DailyStat struct {
	Date           string `json:"date"`
	Views          int64  `json:"views"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

type VisitorSummary struct {
	SessionID string    `json:"session_id,omitempty"`
	ActiveNow int64     `json:"active_now"`
	Today     DailyStat `json:"today"`
}
