package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/middleware"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/jwt"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
}

type Handlers struct {
	Payroll  PayrollHandler
	Leave    LeaveHandler
	Shift    ShiftHandler
	Activity ActivityHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "rota-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/payroll", func(r chi.Router) {
				r.With(middleware.RequirePermission(auth.PermissionPayrollView)).Get("/period", h.Payroll.GetPeriodReport)
				r.With(middleware.RequirePermission(auth.PermissionPayrollExport)).Get("/period/export", h.Payroll.ExportPeriod)
				r.With(middleware.RequirePermission(auth.PermissionPayrollView)).Get("/shifts/{id}/audit", h.Payroll.AuditShift)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Use(middleware.RequirePermission(auth.PermissionLeaveView))

				r.Get("/accrual", h.Leave.GetAccrual)
				r.Get("/accrual/breakdown", h.Leave.GetAccrualBreakdown)
				r.Get("/balances/{staffID}", h.Leave.GetBalance)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionLeaveManage))
					r.Post("/balances/{staffID}/usage", h.Leave.RecordUsage)
					r.Post("/balances/refresh", h.Leave.RefreshBalances)
					r.Post("/balances/migrate", h.Leave.MigrateEntitlement)
				})
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Use(middleware.RequirePermission(auth.PermissionShiftsView))

				r.Get("/deadline", h.Shift.GetWeekDeadline)
				r.With(middleware.RequirePermission(auth.PermissionPayrollView)).Get("/operational-audit", h.Shift.OperationalAudit)
				r.With(middleware.RequirePermission(auth.PermissionShiftsManage)).Post("/remove-duplicates", h.Shift.RemoveDuplicates)
			})

			r.With(middleware.RequirePermission(auth.PermissionActivityView)).Get("/activity", h.Activity.ListRecent)
		})
	})
	return r
}
