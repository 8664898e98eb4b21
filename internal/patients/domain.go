package patients

import (
	"errors"
	"time"
)

// Patient is a registered clinic patient. Records are deactivated rather
// than deleted so historical appointments and notes stay resolvable.
type Patient struct {
	ID          int64
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       string
	Phone       string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName joins the name parts for display.
func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

var (
	// ErrNotFound indicates the patient does not exist.
	ErrNotFound = errors.New("patients: not found")
)
