package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
	"github.com/BruksfildServices01/coach-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/coach-scheduler/internal/middleware"
	"github.com/BruksfildServices01/coach-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/coach-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type SessionHandler struct {
	sessions *ucBooking.SessionService
}

func NewSessionHandler(sessions *ucBooking.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// ======================================================
// REQUESTS
// ======================================================

type StartSessionRequest struct {
	CoachSlug string `json:"coach_slug" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
	Timezone  string `json:"timezone"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

type SelectDateTimeRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type SubmitRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// SessionResponse is the wizard snapshot plus the step position for
// progress indicators.
type SessionResponse struct {
	domain.State
	StepIndex int             `json:"step_index"`
	Booking   *models.Booking `json:"booking,omitempty"`
}

func sessionResponse(st domain.State, b *models.Booking) SessionResponse {
	return SessionResponse{State: st, StepIndex: st.Step.Index(), Booking: b}
}

// ======================================================
// START / GET
// ======================================================

func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	st, err := h.sessions.Start(c.Request.Context(), ucBooking.StartSessionInput{
		CoachSlug: req.CoachSlug,
		Kind:      domain.Kind(req.Kind),
		Timezone:  req.Timezone,
		Owner:     middleware.Subject(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Created(c, sessionResponse(st, nil))
}

func (h *SessionHandler) Get(c *gin.Context) {
	st, err := h.sessions.Get(c.Request.Context(), c.Param("id"), middleware.Subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, sessionResponse(st, nil))
}

// ======================================================
// STEPS
// ======================================================

func (h *SessionHandler) SelectService(c *gin.Context) {
	var req SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "service_id is required.")
		return
	}

	st, err := h.sessions.SelectService(c.Request.Context(), c.Param("id"), middleware.Subject(c), req.ServiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, sessionResponse(st, nil))
}

func (h *SessionHandler) SelectDateTime(c *gin.Context) {
	var req SelectDateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "date and time are required.")
		return
	}

	st, err := h.sessions.SelectDateTime(c.Request.Context(), c.Param("id"), middleware.Subject(c), req.Date, req.Time)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, sessionResponse(st, nil))
}

func (h *SessionHandler) Back(c *gin.Context) {
	st, err := h.sessions.Back(c.Request.Context(), c.Param("id"), middleware.Subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, sessionResponse(st, nil))
}

func (h *SessionHandler) Retry(c *gin.Context) {
	st, err := h.sessions.Retry(c.Request.Context(), c.Param("id"), middleware.Subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, sessionResponse(st, nil))
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	if err := h.sessions.Cancel(c.Request.Context(), c.Param("id"), middleware.Subject(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ======================================================
// SUBMIT
// ======================================================

// Submit answers 201 with the booking, or, when the store refused it, 422
// with the failed session so the client can offer a retry.
func (h *SessionHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	res, err := h.sessions.Submit(c.Request.Context(), c.Param("id"), middleware.Subject(c), domain.FormData{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		if res != nil && res.State.Step == domain.StepFailed {
			code, ok := httperr.CodeOf(err)
			if !ok {
				code = "booking_failed"
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error_code": code,
				"message":    failureMessage(err),
				"session":    sessionResponse(res.State, nil),
			})
			return
		}
		writeError(c, err)
		return
	}

	httpresp.Created(c, sessionResponse(res.State, res.Booking))
}

func failureMessage(err error) string {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		if msg, ok := messages[be.Code]; ok {
			return msg
		}
	}
	return "The booking could not be saved. Please try again."
}
