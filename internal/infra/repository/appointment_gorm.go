package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	id uuid.UUID,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg("service_not_found", "Service not found")
		}
		return nil, err
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) ListActiveServices(
	ctx context.Context,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

// dayLockKey maps a calendar day to the advisory lock key that
// serializes bookings on that day.
func dayLockKey(dayStart time.Time) int64 {
	return dayStart.Unix()
}

// CreateScheduled runs the conflict check and the insert in a single
// transaction. On postgres the transaction first takes a per-day
// advisory lock: FOR UPDATE cannot lock rows that do not exist yet, so
// two inserts into an empty day would both pass a plain scan. The lock
// holds until commit, and the scan of the waiting transaction runs on a
// fresh statement snapshot, so it sees the winner's row.
func (r *AppointmentGormRepository) CreateScheduled(
	ctx context.Context,
	ap *models.Appointment,
	duration time.Duration,
) error {

	reqStart := ap.ScheduledAt
	reqEnd := reqStart.Add(duration)
	dayStart, dayEnd := domain.DayWindow(reqStart)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// sqlite serializes writers on its own
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(
				"SELECT pg_advisory_xact_lock(?)", dayLockKey(dayStart),
			).Error; err != nil {
				return err
			}
		}

		var sameDay []models.Appointment
		if err := tx.
			Preload("Service").
			Where(
				"status <> ? AND scheduled_at >= ? AND scheduled_at <= ?",
				string(domain.StatusCancelled), dayStart, dayEnd,
			).
			Order("scheduled_at ASC").
			Find(&sameDay).Error; err != nil {
			return err
		}

		for i := range sameDay {
			other := &sameDay[i]
			otherStart := other.ScheduledAt
			otherEnd := otherStart.Add(domain.ServiceDuration(other))

			if domain.Overlaps(reqStart, reqEnd, otherStart, otherEnd) {
				return httperr.ErrBusinessMsg("time_conflict", "Time slot is already taken")
			}
		}

		return tx.Create(ap).Error
	})
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg("appointment_not_found", "Appointment not found")
		}
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) ListForClient(
	ctx context.Context,
	clientID uuid.UUID,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("client_id = ?", clientID).
		Order("scheduled_at DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAllActive(
	ctx context.Context,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Client").
		Where("status <> ?", string(domain.StatusCancelled)).
		Order("scheduled_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListActiveOnDay(
	ctx context.Context,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where(
			"status <> ? AND scheduled_at >= ? AND scheduled_at <= ?",
			string(domain.StatusCancelled), dayStart, dayEnd,
		).
		Order("scheduled_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

// UpdateStatus is a compare-and-set on the previously read status, so a
// concurrent transition on the same row cannot be silently overwritten.
func (r *AppointmentGormRepository) UpdateStatus(
	ctx context.Context,
	ap *models.Appointment,
	previous domain.Status,
	barberID *uuid.UUID,
) error {

	values := map[string]any{
		"status":       ap.Status,
		"cancelled_at": ap.CancelledAt,
	}
	if barberID != nil {
		values["barber_id"] = *barberID
	}

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status = ?", ap.ID, string(previous)).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return httperr.ErrBusinessMsg(
			"concurrent_update",
			"Appointment was modified by another request",
		)
	}

	if barberID != nil {
		ap.BarberID = barberID
	}

	return nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
