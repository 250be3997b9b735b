package appointment

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
)

// ======================================================
// LIST FOR CLIENT
// ======================================================

type ListForClient struct {
	repo domain.Repository
}

func NewListForClient(repo domain.Repository) *ListForClient {
	return &ListForClient{repo: repo}
}

// Execute lists the client's own appointments, newest first, with the
// service resolved. Cancelled appointments are included so the client
// sees their full history.
func (uc *ListForClient) Execute(
	ctx context.Context,
	clientID uuid.UUID,
) ([]dto.AppointmentDTO, error) {

	appointments, err := uc.repo.ListForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, dto.FromAppointment(&appointments[i], true, false))
	}

	return out, nil
}

// ======================================================
// LIST ALL (BARBER AGENDA)
// ======================================================

type ListAll struct {
	repo domain.Repository
}

func NewListAll(repo domain.Repository) *ListAll {
	return &ListAll{repo: repo}
}

// Execute lists every non-cancelled appointment in chronological order
// with service and client info, for the barber agenda view.
func (uc *ListAll) Execute(ctx context.Context) ([]dto.AppointmentDTO, error) {
	appointments, err := uc.repo.ListAllActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, dto.FromAppointment(&appointments[i], true, true))
	}

	return out, nil
}
