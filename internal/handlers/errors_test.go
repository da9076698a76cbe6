package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/httperr"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&domain.InvalidSelectionError{Reason: "time slot is not available", Value: "11:00 AM"}, http.StatusUnprocessableEntity, "invalid_selection"},
		{domain.ErrSubmitInFlight, http.StatusConflict, "submit_in_flight"},
		{domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{domain.ErrSessionClosed, http.StatusConflict, "session_closed"},
		{fmt.Errorf("%w: at confirmed", domain.ErrWrongStep), http.StatusConflict, "wrong_step"},
		{fmt.Errorf("%w: name", domain.ErrMissingField), http.StatusBadRequest, "missing_field"},
		{httperr.ErrBusiness("coach_not_found"), http.StatusNotFound, "coach_not_found"},
		{httperr.ErrBusiness("time_conflict"), http.StatusUnprocessableEntity, "time_conflict"},
		{httperr.ErrBusiness("invalid_state"), http.StatusUnprocessableEntity, "invalid_state"},
		{httperr.ErrBusiness("invalid_provider"), http.StatusBadRequest, "invalid_provider"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeError(c, tc.err)

		if w.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
			continue
		}

		var body httperr.HTTPError
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: decode: %v", tc.err, err)
		}
		if body.Code != tc.code {
			t.Errorf("%v: code = %s, want %s", tc.err, body.Code, tc.code)
		}
	}
}
