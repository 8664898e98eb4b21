package audit

import "time"

// Outcome records whether the guarded action was permitted.
type Outcome string

const (
	OutcomePermit Outcome = "permit"
	OutcomeDeny   Outcome = "deny"
)

// Valid reports whether the outcome is a known value.
func (o Outcome) Valid() bool {
	return o == OutcomePermit || o == OutcomeDeny
}

// TimestampLayout is the fixed export format, always UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is an immutable audit fact. Once appended it is never updated
// or deleted through any application path.
type Record struct {
	ID         int64
	ActorID    *int64
	ActorName  string
	Action     string
	Detail     string
	Outcome    Outcome
	OccurredAt time.Time
}

// ActorLabel returns the actor display name, or "Unauthenticated" for
// records written without a principal. Only a missing actor ID means
// unauthenticated; the name is a point-in-time snapshot and may be
// empty for accounts that never had one.
func (r Record) ActorLabel() string {
	if r.ActorID == nil {
		return "Unauthenticated"
	}
	return r.ActorName
}

// DetailLabel renders the optional detail for exports.
func (r Record) DetailLabel() string {
	if r.Detail == "" {
		return "-"
	}
	return r.Detail
}

// TimestampLabel renders the record time in the export format.
func (r Record) TimestampLabel() string {
	return r.OccurredAt.UTC().Format(TimestampLayout)
}

// Filter narrows a query. Zero values match everything; Actor and
// Action are case-insensitive substring matches.
type Filter struct {
	Actor   string
	Action  string
	Outcome Outcome
	From    time.Time
	To      time.Time
}

// PagingInfo carries simple pagination metadata.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result bundles a page of records with paging metadata.
type Result struct {
	Rows   []Record
	Paging PagingInfo
}
