package ratelimit

import "time"

// Entry is the request history of a single client.
// Entries are not safe for concurrent use; stores guard them.
type Entry struct {
	// Timestamps holds accepted requests in arrival order.
	Timestamps []time.Time
	Blocked    bool
	BlockUntil time.Time
	// Window is the longest window the entry has been checked against.
	// The sweep never prunes history younger than this.
	Window time.Duration
}

// Result describes the outcome of a single check.
type Result struct {
	Limited bool
	// Count is the number of requests in the window after the check.
	Count     int
	Remaining int
	// ResetAt is when the client regains capacity: the end of the block, or the
	// moment the oldest request leaves the window.
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Check evaluates a request arriving at now and records it when accepted.
func (e *Entry) Check(rule Rule, now time.Time) Result {
	if rule.Window > e.Window {
		e.Window = rule.Window
	}

	if e.Blocked && now.Before(e.BlockUntil) {
		return Result{
			Limited:    true,
			Count:      len(e.Timestamps),
			ResetAt:    e.BlockUntil,
			RetryAfter: e.BlockUntil.Sub(now),
		}
	}

	e.Blocked = false
	e.BlockUntil = time.Time{}
	e.prune(now.Add(-rule.Window))

	if len(e.Timestamps) >= rule.MaxRequests {
		e.Blocked = true
		e.BlockUntil = now.Add(rule.BlockDuration)

		reset := e.BlockUntil
		if rule.BlockDuration == 0 {
			reset = e.Timestamps[0].Add(rule.Window)
		}

		return Result{
			Limited:    true,
			Count:      len(e.Timestamps),
			ResetAt:    reset,
			RetryAfter: reset.Sub(now),
		}
	}

	e.Timestamps = append(e.Timestamps, now)

	return Result{
		Count:     len(e.Timestamps),
		Remaining: rule.MaxRequests - len(e.Timestamps),
		ResetAt:   e.Timestamps[0].Add(rule.Window),
	}
}

// BlockedUntil returns the end of a block that is still active at now.
func (e *Entry) BlockedUntil(now time.Time) (time.Time, bool) {
	if e.Blocked && now.Before(e.BlockUntil) {
		return e.BlockUntil, true
	}

	return time.Time{}, false
}

// Remaining returns how many requests the client may still make without consuming quota.
func (e *Entry) Remaining(rule Rule, now time.Time) int {
	cutoff := now.Add(-rule.Window)
	inWindow := 0

	for _, ts := range e.Timestamps {
		if ts.After(cutoff) {
			inWindow++
		}
	}

	return max(rule.MaxRequests-inWindow, 0)
}

// Sweep drops history older than staleAfter (or the entry's own window when longer),
// lifts expired blocks and reports whether the entry is idle and can be forgotten.
func (e *Entry) Sweep(now time.Time, staleAfter time.Duration) bool {
	e.prune(now.Add(-max(staleAfter, e.Window)))

	if e.Blocked && !now.Before(e.BlockUntil) {
		e.Blocked = false
		e.BlockUntil = time.Time{}
	}

	return len(e.Timestamps) == 0 && !e.Blocked
}

// prune removes timestamps at or before cutoff.
func (e *Entry) prune(cutoff time.Time) {
	keep := 0
	for keep < len(e.Timestamps) && !e.Timestamps[keep].After(cutoff) {
		keep++
	}

	if keep > 0 {
		e.Timestamps = append(e.Timestamps[:0], e.Timestamps[keep:]...)
	}
}
