package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/reviewdesk/internal/api"
	apiMiddleware "github.com/phrazzld/reviewdesk/internal/api/middleware"
	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/redact"
)

const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(app.config.Server.RequestTimeoutSeconds) * time.Second))

	authHandler := api.NewAuthHandler(app.authService, app.jwtService, app.config.Auth.CookieSecure, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	reviewerHandler := api.NewReviewerHandler(app.reviewerService, app.logger)
	cafeHandler := api.NewCafeHandler(app.cafeService, app.location, app.logger)
	settlementHandler := api.NewSettlementHandler(app.settlementService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Get("/health", app.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/verify", authHandler.Verify)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(apiMiddleware.RequireRole(domain.RoleAdmin))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Post("/approve", taskHandler.ApproveTask)
				r.Post("/reject", taskHandler.RejectTask)
				r.Post("/reassign", taskHandler.ReassignTask)
				r.Post("/update", taskHandler.UpdateTask)
				r.Post("/delete", taskHandler.DeleteTask)
			})

			r.Route("/reviewers", func(r chi.Router) {
				r.Get("/", reviewerHandler.ListReviewers)
				r.Post("/", reviewerHandler.CreateReviewer)
				r.Post("/update", reviewerHandler.UpdateReviewer)
				r.Post("/delete", reviewerHandler.DeleteReviewer)
			})

			r.Route("/cafes", func(r chi.Router) {
				r.Get("/", cafeHandler.ListCafes)
				r.Post("/", cafeHandler.CreateCafe)
				r.Post("/delete", cafeHandler.DeleteCafes)
				r.Post("/delete-all", cafeHandler.DeleteAllCafes)
				r.Post("/bulk-import", cafeHandler.BulkImport)
				r.Get("/export-txt", cafeHandler.ExportText)
				r.Get("/template", cafeHandler.Template)
			})

			r.Route("/settlements", func(r chi.Router) {
				r.Get("/", settlementHandler.ListSettlements)
				r.Get("/reconcile", settlementHandler.Reconcile)
			})
		})

		r.Route("/reviewer", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(apiMiddleware.RequireRole(domain.RoleReviewer))

			r.Get("/tasks", taskHandler.ListReviewerTasks)
			r.Post("/tasks/start", taskHandler.StartTask)
			r.Post("/tasks/submit", taskHandler.SubmitTask)
			r.Post("/tasks/decline", taskHandler.DeclineTask)

			r.Get("/mypage/summary", settlementHandler.Summary)
			r.Get("/settlements/{"+api.MonthParam+"}", settlementHandler.MonthDetail)
		})
	})

	return r
}

// handleHealth reports whether the server and its database are reachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Warn("health check failed", "error", redact.Error(err))
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
