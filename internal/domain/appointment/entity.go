package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cancel marks an appointment as cancelled. Re-cancelling an already
// cancelled appointment is a no-op, so the operation is idempotent.
// Ownership is checked by the caller.
func Cancel(ap *models.Appointment, now time.Time) {
	if Status(ap.Status) == StatusCancelled {
		return
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
}
