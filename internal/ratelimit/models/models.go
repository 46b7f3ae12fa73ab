package models

import "time"

// Class groups endpoints that share one per-IP budget.
type Class string

const (
	// ClassAuth covers the unauthenticated login and registration routes.
	ClassAuth Class = "auth"
)

// Limit is a budget of Requests per sliding Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

func (l Limit) Enabled() bool { return l.Requests > 0 && l.Window > 0 }

// Result is the outcome of consuming one request from a bucket.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Key scopes a bucket to a class and client address.
func Key(class Class, ip string) string {
	return "ip:" + string(class) + ":" + ip
}
