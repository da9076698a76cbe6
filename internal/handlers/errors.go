package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
)

// request-shape problems; every other business code is a refusal (422)
// unless it names something missing (404).
var badRequestCodes = map[string]bool{
	"invalid_kind":     true,
	"invalid_date":     true,
	"invalid_month":    true,
	"invalid_provider": true,
}

var messages = map[string]string{
	"coach_not_found":   "Coach not found.",
	"service_not_found": "Service not found.",
	"booking_not_found": "Booking not found.",
	"time_conflict":     "That time is no longer available.",
	"intro_not_offered": "This coach does not offer free intro sessions.",
	"invalid_state":     "The booking cannot change to that status.",
	"invalid_booking":   "The booking is incomplete.",
	"invalid_kind":      "Unknown booking kind.",
	"invalid_date":      "Invalid date.",
	"invalid_month":     "Invalid month.",
	"invalid_provider":  "Unknown calendar provider.",
}

func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsInvalidSelection(err):
		httperr.Unprocessable(c, "invalid_selection", err.Error())
	case errors.Is(err, domain.ErrSubmitInFlight):
		httperr.Conflict(c, "submit_in_flight", "A submission for this booking is already in progress.")
	case errors.Is(err, domain.ErrSessionNotFound):
		httperr.NotFound(c, "session_not_found", "Booking session not found or expired.")
	case errors.Is(err, domain.ErrSessionClosed):
		httperr.Conflict(c, "session_closed", "Booking session was cancelled.")
	case errors.Is(err, domain.ErrWrongStep):
		httperr.Conflict(c, "wrong_step", err.Error())
	case errors.Is(err, domain.ErrMissingField):
		httperr.BadRequest(c, "missing_field", err.Error())
	case errors.Is(err, domain.ErrMalformedTime):
		httperr.Unprocessable(c, "malformed_time", err.Error())
	default:
		writeBusiness(c, err)
	}
}

func writeBusiness(c *gin.Context, err error) {
	code, ok := httperr.CodeOf(err)
	if !ok {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		httperr.Internal(c, "internal_error", "Something went wrong.")
		return
	}

	msg := messages[code]
	if msg == "" {
		msg = code
	}

	switch {
	case badRequestCodes[code]:
		httperr.BadRequest(c, code, msg)
	case strings.HasSuffix(code, "_not_found"):
		httperr.NotFound(c, code, msg)
	default:
		httperr.Unprocessable(c, code, msg)
	}
}
