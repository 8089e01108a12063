package core

import "time"

// RenderStatus is the result of one render cycle.
type RenderStatus string

const (
	StatusOK     RenderStatus = "ok"
	StatusFailed RenderStatus = "failed"
)

// RenderOutcome describes a finished render cycle. It never carries
// aggregates, only what happened.
type RenderOutcome struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Variant   string        `json:"variant"`
	Records   int           `json:"records"`
	Users     int           `json:"users"`
	Status    RenderStatus  `json:"status"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	At        time.Time     `json:"at"`
}

// Failed reports whether the cycle ended in an error.
func (o RenderOutcome) Failed() bool {
	return o.Status == StatusFailed
}
