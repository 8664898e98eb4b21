package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/shared"
)

func requestAs(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	if userID == "" {
		return req
	}
	sess := &shared.Session{}
	sess.SetUser(userID)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func newTestMiddleware(sink *memorySink, principals map[int64]Principal) Middleware {
	return Middleware{
		Guard:  newTestGuard(sink, principals),
		Policy: DefaultPolicy(),
	}
}

func TestRequirePermitsAndExposesDecision(t *testing.T) {
	sink := &memorySink{}
	m := newTestMiddleware(sink, map[int64]Principal{
		1: {ID: 1, DisplayName: "Clinic Admin", Role: RoleAdmin, Active: true},
	})

	var seen Decision
	var found bool
	handler := m.Require(OpViewAuditLogs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, found = DecisionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("1"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, found)
	require.Equal(t, RoleAdmin, seen.Principal.Role)
	require.Len(t, sink.records, 1)
}

func TestRequireRejectsUnauthenticated(t *testing.T) {
	sink := &memorySink{}
	m := newTestMiddleware(sink, nil)

	handler := m.Require(OpViewAuditLogs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs(""))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Len(t, sink.records, 1)
	require.Equal(t, "unauthorized:"+OpViewAuditLogs, sink.records[0].Action)
}

func TestRequireRejectsWrongRole(t *testing.T) {
	sink := &memorySink{}
	m := newTestMiddleware(sink, map[int64]Principal{
		3: {ID: 3, DisplayName: "Kate Jones", Role: RoleReceptionist, Active: true},
	})

	handler := m.Require(OpManageUsers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("3"))

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Len(t, sink.records, 1)
	require.Equal(t, "forbidden:"+OpManageUsers, sink.records[0].Action)
}

func TestRequireFailsClosedOnStorageError(t *testing.T) {
	sink := &memorySink{failing: true}
	m := newTestMiddleware(sink, map[int64]Principal{
		1: {ID: 1, DisplayName: "Clinic Admin", Role: RoleAdmin, Active: true},
	})

	handler := m.Require(OpViewAuditLogs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("1"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRequireUnknownOperation(t *testing.T) {
	m := newTestMiddleware(&memorySink{}, nil)

	handler := m.Require("no_such_operation")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestAs("1"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
