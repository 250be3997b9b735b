package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/infra/slotcache"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type CancelAppointment struct {
	repo  domain.Repository
	cache *slotcache.Cache
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewCancelAppointment(
	repo domain.Repository,
	cache *slotcache.Cache,
	audit *audit.Dispatcher,
	loc *time.Location,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		cache: cache,
		audit: audit,
		loc:   loc,
	}
}

// Execute cancels an appointment on behalf of its owning client. Only
// the owner may cancel; cancelling an already cancelled appointment
// returns the current state unchanged.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	clientID uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if ap.ClientID != clientID {
		return nil, httperr.ErrBusinessMsg("not_owner", "Not allowed")
	}

	previous := domain.Status(ap.Status)
	if previous == domain.StatusCancelled {
		return ap, nil
	}

	domain.Cancel(ap, time.Now().In(uc.loc))

	if err := uc.repo.UpdateStatus(ctx, ap, previous, nil); err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, ap.ScheduledAt.In(uc.loc).Format("2006-01-02"))

	uc.audit.Dispatch(audit.Event{
		UserID:   &clientID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
