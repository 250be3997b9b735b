package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ServiceDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Price           *float64  `json:"price"`
	DurationMinutes *int      `json:"durationMinutes"`
}

type ClientDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AppointmentDTO struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"userId"`
	ServiceID   uuid.UUID   `json:"serviceId"`
	BarberID    *uuid.UUID  `json:"barberId"`
	ScheduledAt time.Time   `json:"scheduledAt"`
	Status      string      `json:"status"`
	Service     *ServiceDTO `json:"service,omitempty"`
	Client      *ClientDTO  `json:"client,omitempty"`
}

func FromAppointment(ap *models.Appointment, withService, withClient bool) AppointmentDTO {
	out := AppointmentDTO{
		ID:          ap.ID,
		UserID:      ap.ClientID,
		ServiceID:   ap.ServiceID,
		BarberID:    ap.BarberID,
		ScheduledAt: ap.ScheduledAt,
		Status:      ap.Status,
	}

	if withService && ap.Service.ID != uuid.Nil {
		out.Service = &ServiceDTO{
			ID:              ap.Service.ID,
			Name:            ap.Service.Name,
			Price:           ap.Service.Price,
			DurationMinutes: ap.Service.DurationMinutes,
		}
	}

	if withClient && ap.Client.ID != uuid.Nil {
		out.Client = &ClientDTO{
			Name:  ap.Client.Name,
			Email: ap.Client.Email,
		}
	}

	return out
}
