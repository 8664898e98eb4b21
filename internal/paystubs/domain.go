package paystubs

import (
	"errors"
	"regexp"
	"time"
)

// Paystub records that a stub document exists for a user and period.
// The document itself lives outside the database; only the path is kept.
type Paystub struct {
	ID         int64
	UserID     int64
	UserName   string
	Period     string
	FilePath   string
	UploadedAt time.Time
}

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether the period is a YYYY-MM label.
func ValidPeriod(period string) bool {
	return periodPattern.MatchString(period)
}

var (
	// ErrNotFound indicates the paystub does not exist.
	ErrNotFound = errors.New("paystubs: not found")
	// ErrInvalidPeriod rejects malformed period labels.
	ErrInvalidPeriod = errors.New("paystubs: period must be YYYY-MM")
	// ErrDuplicate indicates a stub already exists for the user and period.
	ErrDuplicate = errors.New("paystubs: duplicate period for user")
)
