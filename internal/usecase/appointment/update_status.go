package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type UpdateStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateStatus {
	return &UpdateStatus{
		repo:  repo,
		audit: audit,
	}
}

// Execute applies a barber-requested lifecycle transition and stamps the
// acting barber as the assigned barber. The transition table lives in
// the domain package; persistence is a compare-and-set on the status the
// appointment had when loaded.
func (uc *UpdateStatus) Execute(
	ctx context.Context,
	barberID uuid.UUID,
	appointmentID uuid.UUID,
	requested domain.Status,
) (*models.Appointment, error) {

	if !domain.IsBarberStatus(requested) {
		return nil, httperr.ErrBusinessMsg("invalid_status", "Invalid status")
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	previous := domain.Status(ap.Status)
	if err := domain.CanTransition(previous, requested); err != nil {
		return nil, err
	}

	ap.Status = string(requested)

	if err := uc.repo.UpdateStatus(ctx, ap, previous, &barberID); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &barberID,
		Action:   "appointment_" + string(requested),
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
