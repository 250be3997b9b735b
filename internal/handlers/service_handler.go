package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
)

type ServiceHandler struct {
	repo domain.Repository
}

func NewServiceHandler(repo domain.Repository) *ServiceHandler {
	return &ServiceHandler{repo: repo}
}

// List returns the active service catalogue for booking screens.
func (h *ServiceHandler) List(c *gin.Context) {
	services, err := h.repo.ListActiveServices(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "failed_to_list_services", "Server error")
		return
	}

	httpresp.List(c, services)
}
