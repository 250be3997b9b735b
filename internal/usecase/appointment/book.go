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

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	ClientID    uuid.UUID
	ServiceID   uuid.UUID
	ScheduledAt time.Time
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo  domain.Repository
	cache *slotcache.Cache
	audit *audit.Dispatcher
	loc   *time.Location
}

func NewBookAppointment(
	repo domain.Repository,
	cache *slotcache.Cache,
	audit *audit.Dispatcher,
	loc *time.Location,
) *BookAppointment {
	return &BookAppointment{
		repo:  repo,
		cache: cache,
		audit: audit,
		loc:   loc,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(domain.ResolveDuration(svc.DurationMinutes)) * time.Minute
	start := in.ScheduledAt.In(uc.loc)

	ap := &models.Appointment{
		ClientID:    in.ClientID,
		ServiceID:   svc.ID,
		ScheduledAt: start,
		Status:      string(domain.InitialStatus()),
	}

	// conflict check + insert are one atomic unit in the repository
	if err := uc.repo.CreateScheduled(ctx, ap, duration); err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			uc.audit.Dispatch(audit.Event{
				UserID: &in.ClientID,
				Action: "appointment_conflict",
				Entity: "appointment",
				Metadata: map[string]any{
					"start": start,
					"end":   start.Add(duration),
				},
			})
		}
		return nil, err
	}

	ap.Service = *svc

	uc.cache.Invalidate(ctx, start.Format("2006-01-02"))

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ClientID,
		Action:   "appointment_booked",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
