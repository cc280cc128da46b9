package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assetdeskhq/assetdesk-backend/api/controllers"
	"github.com/assetdeskhq/assetdesk-backend/api/middleware"
	"github.com/assetdeskhq/assetdesk-backend/internal/activity"
	"github.com/assetdeskhq/assetdesk-backend/internal/assets"
	"github.com/assetdeskhq/assetdesk-backend/internal/assignments"
	"github.com/assetdeskhq/assetdesk-backend/internal/notifications"
	"github.com/assetdeskhq/assetdesk-backend/pkg/config"
	"github.com/assetdeskhq/assetdesk-backend/pkg/db"
	"github.com/assetdeskhq/assetdesk-backend/pkg/enums"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
	pkgredis "github.com/assetdeskhq/assetdesk-backend/pkg/redis"
)

// NewRouter wires the HTTP surface: health and metrics stay public, everything
// under /api/v1 requires a bearer token, and admin-only lifecycle operations
// sit behind a role check.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	assetsService assets.Service,
	assignmentsService assignments.Service,
	notificationsService notifications.Service,
	recorder activity.Recorder,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	admin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", controllers.ListAssets(assetsService, logg))
			r.With(admin).Post("/", controllers.CreateAsset(assetsService, logg))
			r.Route("/{assetId}", func(r chi.Router) {
				r.Get("/", controllers.GetAsset(assetsService, logg))
				r.With(admin).Patch("/", controllers.UpdateAsset(assetsService, logg))
				r.With(admin).Post("/status", controllers.SetAssetStatus(assetsService, logg))
			})
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", controllers.ListAssignments(assignmentsService, logg))
			r.With(admin).Post("/", controllers.CreateAssignment(assignmentsService, logg))
			r.With(admin).Get("/summary", controllers.AssignmentSummary(assignmentsService, logg))
			r.Route("/{assignmentId}", func(r chi.Router) {
				r.Get("/", controllers.GetAssignment(assignmentsService, logg))
				r.Get("/activity", controllers.AssignmentActivity(recorder, logg))
				r.Post("/accept", controllers.AcceptAssignment(assignmentsService, logg))
				r.Post("/refuse", controllers.RefuseAssignment(assignmentsService, logg))
				r.Post("/return-request", controllers.RequestAssignmentReturn(assignmentsService, logg))
				r.With(admin).Post("/return-approve", controllers.ApproveAssignmentReturn(assignmentsService, logg))
				r.With(admin).Post("/return-reject", controllers.RejectAssignmentReturn(assignmentsService, logg))
				r.With(admin).Post("/cancel", controllers.CancelAssignment(assignmentsService, logg))
				r.With(admin).Post("/revert", controllers.RevertAssignment(assignmentsService, logg))
				r.With(admin).Delete("/", controllers.DeleteAssignment(assignmentsService, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
