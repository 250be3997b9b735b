package appointment

import (
	"fmt"
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

const (
	// SlotMinutes is the fixed slot granularity of the booking grid.
	SlotMinutes = 30

	// DefaultDurationMinutes applies when a service carries no duration.
	DefaultDurationMinutes = 30
)

// ResolveDuration is the single duration policy used by both the
// availability computation and the conflict check.
func ResolveDuration(minutes *int) int {
	if minutes == nil || *minutes <= 0 {
		return DefaultDurationMinutes
	}
	return *minutes
}

// ServiceDuration resolves the duration of an appointment's service.
func ServiceDuration(ap *models.Appointment) time.Duration {
	return time.Duration(ResolveDuration(ap.Service.DurationMinutes)) * time.Minute
}

// OccupiedSlots computes the set of HH:MM slot labels occupied by the
// given appointments, viewed in loc. A slot counts as occupied when any
// appointment's service interval [start, start+duration) touches any
// part of the slot window, so the labels are floored to slot boundaries.
// The result is deduplicated and sorted ascending; it is never nil.
func OccupiedSlots(appointments []models.Appointment, loc *time.Location) []string {
	seen := make(map[string]struct{})

	for _, ap := range appointments {
		start := ap.ScheduledAt.In(loc)
		startMin := start.Hour()*60 + start.Minute()
		endMin := startMin + ResolveDuration(ap.Service.DurationMinutes)

		for min := startMin; min < endMin; min += SlotMinutes {
			slot := min - min%SlotMinutes
			label := fmt.Sprintf("%02d:%02d", slot/60, slot%60)
			seen[label] = struct{}{}
		}
	}

	slots := make([]string, 0, len(seen))
	for label := range seen {
		slots = append(slots, label)
	}
	sort.Strings(slots)

	return slots
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) overlap. Intervals that exactly abut do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(bStart) && aStart.Before(bEnd) {
		return true
	}
	if !bStart.Before(aStart) && bStart.Before(aEnd) {
		return true
	}
	return false
}

// DayWindow returns the inclusive [00:00:00.000, 23:59:59.999] window of
// the calendar day containing t, in t's location. The end is derived
// from the next calendar day, not from a 24h offset, so DST-transition
// days of 23 or 25 hours still close at their own midnight.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	next := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	return start, next.Add(-time.Millisecond)
}
