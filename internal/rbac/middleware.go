package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clinicore/clinicore/internal/platform/httpx"
	"github.com/clinicore/clinicore/internal/shared"
)

type decisionContextKey struct{}

// ContextWithDecision stores the authorization decision in context.
func ContextWithDecision(ctx context.Context, dec Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, dec)
}

// DecisionFromContext extracts the decision placed by Require.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	dec, ok := ctx.Value(decisionContextKey{}).(Decision)
	return dec, ok
}

// Middleware wires the access guard into HTTP routes. Every guarded
// route declares exactly one operation from the policy table.
type Middleware struct {
	Guard  *Guard
	Policy Policy
	Logger *slog.Logger
}

// Require authorizes the session principal for the operation before
// the handler runs. Denials are answered before any business logic or
// storage access happens.
func (m Middleware) Require(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			required, ok := m.Policy.Required(operation)
			if !ok {
				if m.Logger != nil {
					m.Logger.Error("operation missing from policy", slog.String("operation", operation))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}

			principalID := shared.UserIDFromContext(r.Context())
			dec, err := m.Guard.Authorize(r.Context(), principalID, required, operation)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(ContextWithDecision(r.Context(), dec)))
			case errors.Is(err, ErrUnauthenticated):
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			case errors.Is(err, ErrForbidden):
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
			case errors.Is(err, ErrStorageFailure):
				// Generic message only; internals stay in the log.
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "temporary failure, please try again")
			default:
				if m.Logger != nil {
					m.Logger.Error("authorize", slog.String("operation", operation), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			}
		})
	}
}
