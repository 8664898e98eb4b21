package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinicore/clinicore/internal/audit"
)

var (
	// ErrUnauthenticated is returned when no principal accompanies the
	// request.
	ErrUnauthenticated = errors.New("rbac: unauthenticated")
	// ErrForbidden is returned when the principal's role is outside the
	// required set.
	ErrForbidden = errors.New("rbac: forbidden")
	// ErrStorageFailure indicates the audit write (or role resolution)
	// could not complete. The guarded action must not proceed.
	ErrStorageFailure = errors.New("rbac: audit storage failure")
	// ErrPrincipalNotFound is returned by resolvers for unknown
	// principal identifiers.
	ErrPrincipalNotFound = errors.New("rbac: principal not found")
)

// Decision is the outcome of a single authorization check.
type Decision struct {
	Principal Principal
	Outcome   audit.Outcome
	Operation string
	RecordID  int64
}

// Guard authorizes operations and records every decision. Exactly one
// audit record is written per Authorize call, permit or deny; if that
// write fails the action is denied.
type Guard struct {
	resolver Resolver
	sink     audit.Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewGuard constructs a Guard.
func NewGuard(resolver Resolver, sink audit.Sink, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{resolver: resolver, sink: sink, logger: logger, now: time.Now}
}

// Authorize checks whether the principal may perform the operation.
// principalID <= 0 means unauthenticated. A superadmin passes every
// non-empty required set; an empty set permits nobody.
func (g *Guard) Authorize(ctx context.Context, principalID int64, required RoleSet, operation string) (Decision, error) {
	if operation == "" {
		return Decision{}, errors.New("rbac: operation name required")
	}

	if principalID <= 0 {
		recordID, err := g.record(ctx, audit.Record{
			Action:  "unauthorized:" + operation,
			Outcome: audit.OutcomeDeny,
		})
		if err != nil {
			return Decision{}, err
		}
		return Decision{Outcome: audit.OutcomeDeny, Operation: operation, RecordID: recordID}, ErrUnauthenticated
	}

	principal, err := g.resolver.Resolve(ctx, principalID)
	if err != nil {
		if !errors.Is(err, ErrPrincipalNotFound) {
			// Fail closed: an unreadable principal must not be permitted.
			g.logger.Error("resolve principal", slog.Int64("principal_id", principalID), slog.Any("error", err))
			return Decision{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		principal = Principal{ID: principalID, Role: RoleNone}
	}

	role := principal.Role
	if !principal.Active {
		role = RoleNone
	}

	actorID := principal.ID
	if g.permitted(role, required) {
		recordID, err := g.record(ctx, audit.Record{
			ActorID:   &actorID,
			ActorName: principal.DisplayName,
			Action:    operation,
			Outcome:   audit.OutcomePermit,
		})
		if err != nil {
			return Decision{}, err
		}
		return Decision{Principal: principal, Outcome: audit.OutcomePermit, Operation: operation, RecordID: recordID}, nil
	}

	recordID, err := g.record(ctx, audit.Record{
		ActorID:   &actorID,
		ActorName: principal.DisplayName,
		Action:    "forbidden:" + operation,
		Detail:    fmt.Sprintf("role %q not in required set [%s]", role, required),
		Outcome:   audit.OutcomeDeny,
	})
	if err != nil {
		return Decision{}, err
	}
	return Decision{Principal: principal, Outcome: audit.OutcomeDeny, Operation: operation, RecordID: recordID}, ErrForbidden
}

// permitted applies the uniform superadmin bypass: every non-empty
// required set implicitly includes superadmin.
func (g *Guard) permitted(role Role, required RoleSet) bool {
	if len(required) == 0 {
		return false
	}
	if role == RoleSuperadmin {
		return true
	}
	return required.Contains(role)
}

func (g *Guard) record(ctx context.Context, rec audit.Record) (int64, error) {
	rec.OccurredAt = g.now().UTC()
	id, err := g.sink.Append(ctx, rec)
	if err != nil {
		g.logger.Error("audit append failed", slog.String("action", rec.Action), slog.Any("error", err))
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return id, nil
}
