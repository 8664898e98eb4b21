package notes

import (
	"errors"
	"time"
)

// DoctorNote is a clinical note attached to a patient, optionally tied
// to a specific appointment. Notes are immutable once written.
type DoctorNote struct {
	ID            int64
	PatientID     int64
	AppointmentID *int64
	DoctorID      int64
	DoctorName    string
	Content       string
	CreatedAt     time.Time
}

var (
	// ErrNotFound indicates the note does not exist.
	ErrNotFound = errors.New("notes: not found")
	// ErrEmptyContent rejects blank notes.
	ErrEmptyContent = errors.New("notes: content must not be empty")
)
