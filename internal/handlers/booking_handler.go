package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/coach-scheduler/internal/middleware"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/coach-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	confirmUC     *ucBooking.ConfirmBooking
	cancelUC      *ucBooking.CancelBooking
	completeUC    *ucBooking.CompleteBooking
	listByDateUC  *ucBooking.ListBookingsByDate
	listByMonthUC *ucBooking.ListBookingsByMonth
	listMineUC    *ucBooking.ListStudentBookings
	exportUC      *ucBooking.ExportCalendar
}

func NewBookingHandler(
	confirmUC *ucBooking.ConfirmBooking,
	cancelUC *ucBooking.CancelBooking,
	completeUC *ucBooking.CompleteBooking,
	listByDateUC *ucBooking.ListBookingsByDate,
	listByMonthUC *ucBooking.ListBookingsByMonth,
	listMineUC *ucBooking.ListStudentBookings,
	exportUC *ucBooking.ExportCalendar,
) *BookingHandler {
	return &BookingHandler{
		confirmUC:     confirmUC,
		cancelUC:      cancelUC,
		completeUC:    completeUC,
		listByDateUC:  listByDateUC,
		listByMonthUC: listByMonthUC,
		listMineUC:    listMineUC,
		exportUC:      exportUC,
	}
}

// ======================================================
// COACH LISTS
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	out, err := h.listByDateUC.Execute(c.Request.Context(), middleware.Subject(c), date)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, out)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Year and month are required.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	out, err := h.listByMonthUC.Execute(c.Request.Context(), middleware.Subject(c), year, month)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, out)
}

// ======================================================
// COACH TRANSITIONS
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.confirmUC.Execute)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancelUC.Execute)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.transition(c, h.completeUC.Execute)
}

func (h *BookingHandler) transition(
	c *gin.Context,
	run func(ctx context.Context, coachID, bookingID string) (*models.Booking, error),
) {
	b, err := run(c.Request.Context(), middleware.Subject(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, b)
}

// ======================================================
// STUDENT
// ======================================================

func (h *BookingHandler) ListMine(c *gin.Context) {
	out, err := h.listMineUC.Execute(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, out)
}

// Calendar returns an add-to-calendar link for a booking the caller owns.
func (h *BookingHandler) Calendar(c *gin.Context) {
	out, err := h.exportUC.Execute(c.Request.Context(), ucBooking.ExportCalendarInput{
		BookingID: c.Param("id"),
		Provider:  c.DefaultQuery("provider", ucBooking.ProviderGoogle),
		ActorID:   middleware.Subject(c),
		IsCoach:   middleware.IsCoach(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, out)
}
