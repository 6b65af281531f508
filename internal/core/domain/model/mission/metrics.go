package mission

import (
	"math"
	"time"
)

// getProgress maps each status to its completion percentage. Statuses not
// listed, ABORTED and FAILED among them, report 0.
func getProgress() map[Status]int {
	return map[Status]int{
		Queued:      0,
		Preparing:   10,
		Takeoff:     20,
		Cruising:    40,
		Approaching: 70,
		Landing:     85,
		Delivered:   90,
		Returning:   95,
		Completed:   100,
	}
}

// DurationMinutes is the elapsed time from creation, rounded to whole minutes.
// Closed missions stop at completedAt or the failure time, open ones run until now.
//
// Example:
//
//	// created at 12:00, still cruising at 12:15:20
//	mission.DurationMinutes(m, now) // 15
//
// A clock that reads earlier than the creation time yields 0.
func DurationMinutes(m *Mission, now time.Time) int {
	end := now
	switch {
	case m.completedAt != nil:
		end = *m.completedAt
	case m.failure != nil:
		end = m.failure.OccurredAt
	}

	if end.Before(m.createdAt) {
		return 0
	}
	return int(math.Round(end.Sub(m.createdAt).Minutes()))
}

// ProgressPercent is a coarse completion indicator. Aborted and failed missions report 0.
func ProgressPercent(m *Mission) int {
	return ProgressFor(m.status)
}

// ProgressFor is the completion indicator of a mission in status.
func ProgressFor(status Status) int {
	return getProgress()[status]
}
