package telephony

import (
	"errors"
	"time"
)

// Kind classifies a telephony event.
type Kind string

const (
	KindSMS  Kind = "sms"
	KindCall Kind = "call"
	KindFax  Kind = "fax"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindSMS, KindCall, KindFax:
		return true
	}
	return false
}

// Direction marks who initiated the event.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Valid reports whether the direction is known.
func (d Direction) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// Log is a single telephony event delivered by the provider webhook.
type Log struct {
	ID         int64
	Kind       Kind
	Direction  Direction
	FromNumber string
	ToNumber   string
	Status     string
	Body       string
	OccurredAt time.Time
	CreatedAt  time.Time
}

var (
	// ErrInvalidEvent rejects payloads with unknown kind or direction.
	ErrInvalidEvent = errors.New("telephony: invalid event")
)
