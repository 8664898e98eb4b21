package appointments

import (
	"errors"
	"time"
)

// Status tracks an appointment through its lifecycle.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusRescheduled Status = "rescheduled"
	StatusCancelled   Status = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusRescheduled, StatusCancelled:
		return true
	}
	return false
}

// Appointment books a patient with a doctor at a point in time.
type Appointment struct {
	ID          int64
	PatientID   int64
	DoctorID    int64
	ScheduledAt time.Time
	Reason      string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	// ErrNotFound indicates the appointment does not exist.
	ErrNotFound = errors.New("appointments: not found")
	// ErrPastTime rejects bookings in the past.
	ErrPastTime = errors.New("appointments: scheduled time must be in the future")
	// ErrCancelled rejects changes to a cancelled appointment.
	ErrCancelled = errors.New("appointments: already cancelled")
)
