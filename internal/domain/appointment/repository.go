package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type Repository interface {
	// -------- Service --------

	// GetService returns a business error with code "service_not_found"
	// when no such service exists; any other error is a storage failure.
	GetService(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Service, error)

	ListActiveServices(
		ctx context.Context,
	) ([]models.Service, error)

	// -------- Appointment (create / conflict) --------

	// CreateScheduled inserts the appointment unless its service interval
	// overlaps a non-cancelled appointment on the same day. The conflict
	// check and the insert run as one atomic unit.
	CreateScheduled(
		ctx context.Context,
		ap *models.Appointment,
		duration time.Duration,
	) error

	// -------- Appointment (read) --------

	// GetAppointment returns a business error with code
	// "appointment_not_found" when no such appointment exists.
	GetAppointment(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Appointment, error)

	ListForClient(
		ctx context.Context,
		clientID uuid.UUID,
	) ([]models.Appointment, error)

	ListAllActive(
		ctx context.Context,
	) ([]models.Appointment, error)

	// ListActiveOnDay returns the non-cancelled appointments whose
	// scheduled time falls within [dayStart, dayEnd], with service data
	// resolved, ordered by scheduled time.
	ListActiveOnDay(
		ctx context.Context,
		dayStart time.Time,
		dayEnd time.Time,
	) ([]models.Appointment, error)

	// -------- Appointment (state change) --------

	// UpdateStatus persists a status change conditioned on the status the
	// caller last read (compare-and-set). barberID, when set, is stamped
	// as the assigned barber.
	UpdateStatus(
		ctx context.Context,
		ap *models.Appointment,
		previous Status,
		barberID *uuid.UUID,
	) error
}
