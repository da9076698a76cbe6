package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/coach-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type CoachHandler struct {
	catalogue *ucBooking.Catalogue
	slots     *ucBooking.GetSlots
}

func NewCoachHandler(
	catalogue *ucBooking.Catalogue,
	slots *ucBooking.GetSlots,
) *CoachHandler {
	return &CoachHandler{
		catalogue: catalogue,
		slots:     slots,
	}
}

// ======================================================
// CATALOGUE
// ======================================================

func (h *CoachHandler) List(c *gin.Context) {
	coaches, err := h.catalogue.Coaches(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, coaches)
}

func (h *CoachHandler) Get(c *gin.Context) {
	coach, err := h.catalogue.Coach(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, coach)
}

func (h *CoachHandler) Services(c *gin.Context) {
	services, err := h.catalogue.Services(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, services)
}

// ======================================================
// SLOTS
// ======================================================

func (h *CoachHandler) Slots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	out, err := h.slots.Execute(c.Request.Context(), ucBooking.GetSlotsInput{
		CoachSlug: c.Param("slug"),
		Date:      date,
		ServiceID: c.Query("service_id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, out)
}
