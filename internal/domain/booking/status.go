package booking

import "github.com/BruksfildServices01/coach-scheduler/internal/httperr"

// ===============================
// Booking Type
// ===============================

type Type string

const (
	TypeIntro          Type = "intro"
	TypeSession        Type = "session"
	TypePackageSession Type = "package_session"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIntro, TypeSession, TypePackageSession:
		return true
	}
	return false
}

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// InitialStatus is assigned by the store: free intros are confirmed
// immediately, everything else waits for the coach.
func InitialStatus(t Type) Status {
	if t == TypeIntro {
		return StatusConfirmed
	}
	return StatusPending
}

// Active reports whether a booking still holds its time on the calendar.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.Active() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}
