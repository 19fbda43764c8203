package store

import "time"

// Status is a session's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Session is one row of the sessions table.
type Session struct {
	SessionID   string     `json:"session_id"`
	UserName    string     `json:"user_name,omitempty"`
	Status      Status     `json:"status"`
	ProblemName string     `json:"problem_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// APILog is one row per upstream call, recorded for audit and replay.
type APILog struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Endpoint     string    `json:"endpoint"` // "select" | "explore" | "guess"
	RequestBody  string    `json:"request_body"`
	ResponseBody string    `json:"response_body"`
	StatusCode   int       `json:"response_status"`
	CreatedAt    time.Time `json:"created_at"`
}

// PendingRequest stores the original select payload for a queued
// session, replayed upstream exactly once when it is promoted.
type PendingRequest struct {
	SessionID   string
	ProblemName string
	CreatedAt   time.Time
}
