package model

import "time"

// Stint is one timed interval of activity inside a farming session. Durations
// are stored in milliseconds as supplied by the client timer.
type Stint struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"sessionId"`
	UserID     string    `db:"user_id" json:"userId"`
	StartTime  time.Time `db:"start_time" json:"startTime"`
	EndTime    time.Time `db:"end_time" json:"endTime"`
	DurationMs int64     `db:"duration_ms" json:"duration"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateStintParams struct {
	SessionID  string
	UserID     string
	StartTime  time.Time
	EndTime    time.Time
	DurationMs int64
}

// TotalFarmingTime aggregates the stints of one session.
type TotalFarmingTime struct {
	TotalDurationSeconds float64 `json:"totalDuration"`
	StintCount           int     `json:"stintCount"`
}
