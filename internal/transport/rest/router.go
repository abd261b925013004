package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/employee"
	"github.com/frahmantamala/hrm/internal/team"
	"github.com/frahmantamala/hrm/internal/tenant"
	"github.com/frahmantamala/hrm/internal/title"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/transport/middleware"
	"github.com/frahmantamala/hrm/internal/transport/swagger"
	"github.com/frahmantamala/hrm/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ThrottleScopeRegister = "register"
	ThrottleScopeResend   = "resend"
)

// Routes collects everything the router mounts. Nil handlers leave their
// routes unregistered. A nil Limiter disables throttling.
type Routes struct {
	Logger         *slog.Logger
	AllowedOrigins string
	MetricsPath    string

	Health       *HealthHandler
	Docs         *swagger.Docs
	SchemaRouter *middleware.SchemaRouter
	RBAC         *auth.RBACAuthorization
	Limiter      middleware.RateLimiter

	Auth     *auth.Handler
	User     *user.Handler
	Client   *tenant.Handler
	Employee *employee.Handler
	Team     *team.Handler
	Title    *title.Handler
}

func RegisterAllRoutes(router *chi.Mux, routes Routes) {
	base := transport.NewBaseHandler(routes.Logger)

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.CORS(routes.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(routes.Logger))
	router.Use(middleware.Metrics)
	router.Use(chiMiddleware.StripSlashes)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if routes.Health != nil {
		router.Get("/health/live", routes.Health.Liveness)
		router.Get("/health/ready", routes.Health.Readiness)
	}
	if routes.MetricsPath != "" {
		router.Handle(routes.MetricsPath, promhttp.Handler())
	}
	if routes.Docs != nil {
		router.Get("/openapi.yml", routes.Docs.ServeYAML)
		router.Get("/openapi.json", routes.Docs.ServeJSON)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(routes.SchemaRouter.Handler)

		if routes.Auth != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.Post("/login", routes.Auth.Login)
				ar.Post("/token/refresh", routes.Auth.RefreshToken)
				ar.Post("/logout", routes.Auth.Logout)
				ar.Post("/email/verify", routes.Auth.VerifyEmail)
				ar.Post("/password/reset", routes.Auth.PasswordReset)
				ar.Post("/password/reset/confirm", routes.Auth.PasswordResetConfirm)

				ar.With(middleware.Throttle(routes.Limiter, ThrottleScopeRegister, base)).
					Post("/register", routes.Auth.Register)
				ar.With(middleware.Throttle(routes.Limiter, ThrottleScopeResend, base)).
					Post("/email/resend-verification", routes.Auth.ResendVerification)
			})
		}

		// public schema resources, reachable from any resolved tenant
		r.Group(func(pr chi.Router) {
			pr.Use(routes.RBAC.RequireAuthenticated())

			if routes.User != nil {
				pr.Get("/users/me", routes.User.GetCurrentUser)
			}

			if routes.Client != nil {
				pr.Route("/clients", func(cr chi.Router) {
					cr.Get("/", routes.Client.ListClients)
					cr.Post("/", routes.Client.CreateClient)
					cr.Get("/{id}", routes.Client.GetClient)
					cr.Put("/{id}", routes.Client.UpdateClient)
					cr.Patch("/{id}", routes.Client.UpdateClient)
					cr.Delete("/{id}", routes.Client.DeleteClient)
					cr.Post("/{id}/activate", routes.Client.ActivateClient)
				})
			}
		})

		// tenant schema resources
		r.Group(func(tr chi.Router) {
			tr.Use(routes.SchemaRouter.RequireTenantSchema)
			tr.Use(routes.RBAC.RequireAuthenticated())
			tr.Use(routes.RBAC.ResolveActor())

			if routes.Employee != nil {
				tr.Route("/employees", func(er chi.Router) {
					// self-service endpoints; the service checks ownership
					er.Get("/me", routes.Employee.GetCurrentEmployee)
					er.Get("/{id}/personal-detail", routes.Employee.GetPersonalDetail)
					er.Post("/{id}/personal-detail", routes.Employee.SavePersonalDetail)
					er.Patch("/{id}/personal-detail", routes.Employee.SavePersonalDetail)

					er.Group(func(mr chi.Router) {
						mr.Use(routes.RBAC.RequireManagerForWrites())
						mr.Get("/", routes.Employee.ListEmployees)
						mr.Post("/", routes.Employee.CreateEmployee)
						mr.Get("/{id}", routes.Employee.GetEmployee)
						mr.Put("/{id}", routes.Employee.UpdateEmployee)
						mr.Patch("/{id}", routes.Employee.UpdateEmployee)
						mr.Delete("/{id}", routes.Employee.DeleteEmployee)
					})
				})
			}

			if routes.Team != nil {
				tr.Route("/teams", func(sr chi.Router) {
					sr.Use(routes.RBAC.RequireManagerForWrites())
					sr.Get("/", routes.Team.ListTeams)
					sr.Post("/", routes.Team.CreateTeam)
					sr.Get("/{id}", routes.Team.GetTeam)
					sr.Put("/{id}", routes.Team.UpdateTeam)
					sr.Patch("/{id}", routes.Team.UpdateTeam)
					sr.Delete("/{id}", routes.Team.DeleteTeam)
				})
			}

			if routes.Title != nil {
				tr.Route("/titles", func(sr chi.Router) {
					sr.Use(routes.RBAC.RequireManagerForWrites())
					sr.Get("/", routes.Title.ListTitles)
					sr.Post("/", routes.Title.CreateTitle)
					sr.Get("/{id}", routes.Title.GetTitle)
					sr.Put("/{id}", routes.Title.UpdateTitle)
					sr.Patch("/{id}", routes.Title.UpdateTitle)
					sr.Delete("/{id}", routes.Title.DeleteTitle)
				})
			}
		})
	})
}
