package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/appointments"
	audithttp "github.com/clinicore/clinicore/internal/audit/http"
	"github.com/clinicore/clinicore/internal/auth"
	"github.com/clinicore/clinicore/internal/notes"
	"github.com/clinicore/clinicore/internal/observability"
	"github.com/clinicore/clinicore/internal/patients"
	"github.com/clinicore/clinicore/internal/paystubs"
	"github.com/clinicore/clinicore/internal/platform/httpx"
	"github.com/clinicore/clinicore/internal/rbac"
	"github.com/clinicore/clinicore/internal/shared"
	"github.com/clinicore/clinicore/internal/telephony"
	"github.com/clinicore/clinicore/internal/users"
	"github.com/clinicore/clinicore/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Pool           *pgxpool.Pool
	RBACMiddleware rbac.Middleware

	AuthHandler         *auth.Handler
	AuditHandler        *audithttp.Handler
	UsersHandler        *users.Handler
	PatientsHandler     *patients.Handler
	AppointmentsHandler *appointments.Handler
	NotesHandler        *notes.Handler
	PaystubsHandler     *paystubs.Handler
	TelephonyHandler    *telephony.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Clients fetch a token here before their first mutating request.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("issue csrf token", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
	})

	m := params.RBACMiddleware

	r.Route("/auth", func(ar chi.Router) {
		params.AuthHandler.MountRoutes(ar)
	})

	params.AuditHandler.MountRoutes(r, m)

	r.Route("/users", func(ur chi.Router) {
		params.UsersHandler.MountRoutes(ur, m)
	})

	r.Route("/patients", func(pr chi.Router) {
		params.PatientsHandler.MountRoutes(pr, m)
		params.NotesHandler.MountRoutes(pr, m)
	})

	r.Route("/appointments", func(apr chi.Router) {
		params.AppointmentsHandler.MountRoutes(apr, m)
	})

	r.Route("/paystubs", func(psr chi.Router) {
		params.PaystubsHandler.MountRoutes(psr, m)
	})

	r.Route("/telephony", func(tr chi.Router) {
		params.TelephonyHandler.MountRoutes(tr, m)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			jr.Use(m.Require(rbac.OpViewJobs))
			params.JobHandler.MountRoutes(jr)
		})
	}

	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	return r
}
