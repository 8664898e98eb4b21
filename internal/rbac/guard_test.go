package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/audit"
)

type memorySink struct {
	records []audit.Record
	nextID  int64
	failing bool
}

func (s *memorySink) Append(ctx context.Context, record audit.Record) (int64, error) {
	if s.failing {
		return 0, errors.New("sink unavailable")
	}
	s.nextID++
	record.ID = s.nextID
	s.records = append(s.records, record)
	return s.nextID, nil
}

func (s *memorySink) Query(ctx context.Context, f audit.Filter, limit, offset int) ([]audit.Record, error) {
	return append([]audit.Record(nil), s.records...), nil
}

type stubResolver struct {
	principals map[int64]Principal
	err        error
}

func (r *stubResolver) Resolve(ctx context.Context, id int64) (Principal, error) {
	if r.err != nil {
		return Principal{}, r.err
	}
	p, ok := r.principals[id]
	if !ok {
		return Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

func newTestGuard(sink *memorySink, principals map[int64]Principal) *Guard {
	return NewGuard(&stubResolver{principals: principals}, sink, nil)
}

func TestAuthorizePermitWritesOneRecord(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, map[int64]Principal{
		7: {ID: 7, DisplayName: "Dr. John Smith", Role: RoleDoctor, Active: true},
	})

	dec, err := guard.Authorize(context.Background(), 7, NewRoleSet(RoleDoctor, RoleAdmin), OpCreateDoctorNote)
	require.NoError(t, err)
	require.Equal(t, audit.OutcomePermit, dec.Outcome)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, OpCreateDoctorNote, rec.Action)
	require.Equal(t, audit.OutcomePermit, rec.Outcome)
	require.NotNil(t, rec.ActorID)
	require.Equal(t, int64(7), *rec.ActorID)
	require.Equal(t, "Dr. John Smith", rec.ActorName)
	require.False(t, rec.OccurredAt.IsZero())
}

func TestAuthorizeForbiddenWritesDenyRecord(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, map[int64]Principal{
		3: {ID: 3, DisplayName: "Kate Jones", Role: RoleReceptionist, Active: true},
	})

	dec, err := guard.Authorize(context.Background(), 3, NewRoleSet(RoleAdmin), OpManageUsers)
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, audit.OutcomeDeny, dec.Outcome)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "forbidden:"+OpManageUsers, rec.Action)
	require.Equal(t, audit.OutcomeDeny, rec.Outcome)
	require.Contains(t, rec.Detail, `role "receptionist"`)
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, nil)

	_, err := guard.Authorize(context.Background(), 0, NewRoleSet(RoleAdmin), OpViewAuditLogs)
	require.ErrorIs(t, err, ErrUnauthenticated)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "unauthorized:"+OpViewAuditLogs, rec.Action)
	require.Equal(t, audit.OutcomeDeny, rec.Outcome)
	require.Nil(t, rec.ActorID)
}

func TestAuthorizeSuperadminBypassesEveryNonEmptySet(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, map[int64]Principal{
		1: {ID: 1, DisplayName: "Root", Role: RoleSuperadmin, Active: true},
	})

	for _, op := range []string{OpManageUsers, OpCreateDoctorNote, OpExportAuditLogs} {
		required, ok := DefaultPolicy().Required(op)
		require.True(t, ok)
		_, err := guard.Authorize(context.Background(), 1, required, op)
		require.NoError(t, err, op)
	}
	require.Len(t, sink.records, 3)
	for _, rec := range sink.records {
		require.Equal(t, audit.OutcomePermit, rec.Outcome)
	}
}

func TestAuthorizeEmptyRequiredSetPermitsNobody(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, map[int64]Principal{
		1: {ID: 1, Role: RoleSuperadmin, Active: true},
	})

	_, err := guard.Authorize(context.Background(), 1, NewRoleSet(), "retired_operation")
	require.ErrorIs(t, err, ErrForbidden)
	require.Len(t, sink.records, 1)
	require.Equal(t, audit.OutcomeDeny, sink.records[0].Outcome)
}

func TestAuthorizeUnknownPrincipalIsDenied(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, nil)

	_, err := guard.Authorize(context.Background(), 42, NewRoleSet(RoleAdmin), OpViewUsers)
	require.ErrorIs(t, err, ErrForbidden)

	require.Len(t, sink.records, 1)
	require.Equal(t, "forbidden:"+OpViewUsers, sink.records[0].Action)
}

func TestAuthorizeInactivePrincipalIsDenied(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, map[int64]Principal{
		5: {ID: 5, DisplayName: "Former Admin", Role: RoleAdmin, Active: false},
	})

	_, err := guard.Authorize(context.Background(), 5, NewRoleSet(RoleAdmin), OpManageUsers)
	require.ErrorIs(t, err, ErrForbidden)
	require.Contains(t, sink.records[0].Detail, `role ""`)
}

func TestAuthorizeFailsClosedWhenSinkFails(t *testing.T) {
	sink := &memorySink{failing: true}
	guard := newTestGuard(sink, map[int64]Principal{
		7: {ID: 7, Role: RoleAdmin, Active: true},
	})

	_, err := guard.Authorize(context.Background(), 7, NewRoleSet(RoleAdmin), OpManageUsers)
	require.ErrorIs(t, err, ErrStorageFailure)
}

func TestAuthorizeFailsClosedWhenResolverFails(t *testing.T) {
	sink := &memorySink{}
	guard := NewGuard(&stubResolver{err: errors.New("connection reset")}, sink, nil)

	_, err := guard.Authorize(context.Background(), 7, NewRoleSet(RoleAdmin), OpManageUsers)
	require.ErrorIs(t, err, ErrStorageFailure)
	require.Empty(t, sink.records)
}

func TestAuthorizeEachCallWritesItsOwnRecord(t *testing.T) {
	sink := &memorySink{}
	guard := newTestGuard(sink, map[int64]Principal{
		2: {ID: 2, DisplayName: "Clinic Admin", Role: RoleAdmin, Active: true},
	})

	required := NewRoleSet(RoleAdmin)
	for i := 0; i < 3; i++ {
		_, err := guard.Authorize(context.Background(), 2, required, OpViewAuditLogs)
		require.NoError(t, err)
	}
	require.Len(t, sink.records, 3)
}
