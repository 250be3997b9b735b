package appointment

import "github.com/BruksfildServices01/barber-booking/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// BarberStatuses are the statuses a barber may request on an appointment.
var BarberStatuses = []Status{StatusAccepted, StatusRejected, StatusCompleted}

func IsBarberStatus(s Status) bool {
	for _, allowed := range BarberStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// ===============================
// Validations
// ===============================

// CanTransition validates a barber-requested status change against the
// current status. cancelled is terminal; accept/reject only apply to
// scheduled appointments; completed only applies to accepted ones.
func CanTransition(current, requested Status) error {
	if !IsBarberStatus(requested) {
		return httperr.ErrBusinessMsg("invalid_status", "Invalid status")
	}

	if current == StatusCancelled {
		return httperr.ErrBusinessMsg(
			"cancelled_locked",
			"Cancelled appointments cannot be updated",
		)
	}

	if requested != StatusCompleted && current != StatusScheduled {
		return httperr.ErrBusinessMsg(
			"invalid_transition",
			"Only scheduled appointments can be accepted or rejected",
		)
	}

	if requested == StatusCompleted && current != StatusAccepted {
		return httperr.ErrBusinessMsg(
			"invalid_transition",
			"Only accepted appointments can be completed",
		)
	}

	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
