package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	uc "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	bookUC          *uc.BookAppointment
	cancelUC        *uc.CancelAppointment
	updateStatusUC  *uc.UpdateStatus
	occupiedSlotsUC *uc.GetOccupiedSlots
	listForClientUC *uc.ListForClient
	listAllUC       *uc.ListAll
	loc             *time.Location
}

func NewAppointmentHandler(
	bookUC *uc.BookAppointment,
	cancelUC *uc.CancelAppointment,
	updateStatusUC *uc.UpdateStatus,
	occupiedSlotsUC *uc.GetOccupiedSlots,
	listForClientUC *uc.ListForClient,
	listAllUC *uc.ListAll,
	loc *time.Location,
) *AppointmentHandler {
	return &AppointmentHandler{
		bookUC:          bookUC,
		cancelUC:        cancelUC,
		updateStatusUC:  updateStatusUC,
		occupiedSlotsUC: occupiedSlotsUC,
		listForClientUC: listForClientUC,
		listAllUC:       listAllUC,
		loc:             loc,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookAppointmentRequest struct {
	ServiceID   string `json:"serviceId" binding:"required"`
	ScheduledAt string `json:"scheduledAt" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// ERROR MAPPING
// ======================================================

func writeDomainError(c *gin.Context, err error) {
	be, ok := httperr.AsBusiness(err)
	if !ok {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("appointment operation failed")
		httperr.Internal(c, "internal_error", "Server error")
		return
	}

	msg := be.Message
	if msg == "" {
		msg = be.Code
	}

	switch be.Code {
	case "service_not_found", "appointment_not_found":
		httperr.NotFound(c, be.Code, msg)
	case "time_conflict", "concurrent_update":
		httperr.Conflict(c, be.Code, msg)
	case "not_owner", "not_barber":
		httperr.Forbidden(c, be.Code, msg)
	default:
		httperr.BadRequest(c, be.Code, msg)
	}
}

// ======================================================
// BOOK
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "missing_fields", "Missing fields")
		return
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service id")
		return
	}

	scheduledAt, err := parseTimestamp(req.ScheduledAt, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date")
		return
	}

	ap, err := h.bookUC.Execute(c.Request.Context(), uc.BookAppointmentInput{
		ClientID:    clientID,
		ServiceID:   serviceID,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	out := dto.FromAppointment(ap, true, false)
	httpresp.Created(c, out)
}

// ======================================================
// LIST OWN
// ======================================================

func (h *AppointmentHandler) ListOwn(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	appointments, err := h.listForClientUC.Execute(c.Request.Context(), clientID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httpresp.OK(c, appointments)
}

// ======================================================
// LIST ALL (BARBER)
// ======================================================

func (h *AppointmentHandler) ListAll(c *gin.Context) {
	appointments, err := h.listAllUC.Execute(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httpresp.OK(c, appointments)
}

// ======================================================
// OCCUPIED SLOTS
// ======================================================

func (h *AppointmentHandler) OccupiedSlots(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date parameter required")
		return
	}

	date, err := parseDate(dateStr, h.loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date format")
		return
	}

	slots, err := h.occupiedSlotsUC.Execute(c.Request.Context(), date)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"occupiedSlots": slots})
}

// ======================================================
// UPDATE STATUS (BARBER)
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_status", "Invalid status")
		return
	}

	ap, err := h.updateStatusUC.Execute(
		c.Request.Context(),
		barberID,
		appointmentID,
		domain.Status(req.Status),
	)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	out := dto.FromAppointment(ap, true, false)
	httpresp.OK(c, out)
}

// ======================================================
// CANCEL (OWNER)
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	clientID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), clientID, appointmentID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	out := dto.FromAppointment(ap, true, false)
	httpresp.OK(c, out)
}
