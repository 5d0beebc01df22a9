package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecocampus/complaint-service/internal/api/http/handlers"
	"github.com/ecocampus/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Users           *handlers.UsersHandler
	Complaints      *handlers.ComplaintsHandler
	AdminComplaints *handlers.AdminComplaintsHandler
	Leaderboard     *handlers.LeaderboardHandler
	Analytics       *handlers.AnalyticsHandler
	Chat            *handlers.ChatHandler
	Notifications   *handlers.NotificationsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authed.Get("/users/me", cfg.Users.Me)

	complaints := authed.Group("/complaints")
	complaints.Post("", cfg.Complaints.Submit)
	complaints.Get("/public", cfg.Complaints.ListPublic)
	complaints.Get("/mine", cfg.Complaints.ListMine)
	complaints.Post("/classify-image", cfg.Complaints.ClassifyImage)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Post("/:id/vote", cfg.Complaints.Vote)

	authed.Get("/leaderboard", cfg.Leaderboard.Leaderboard)
	authed.Post("/chat", cfg.Chat.Chat)

	notifications := authed.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdministrator())
	admin.Get("/complaints", cfg.AdminComplaints.ListAll)
	admin.Get("/complaints/bin", cfg.AdminComplaints.ListBin)
	admin.Patch("/complaints/:id/status", cfg.AdminComplaints.SetStatus)
	admin.Post("/complaints/:id/verify/ai", cfg.AdminComplaints.RunAIVerification)
	admin.Post("/complaints/:id/verify", cfg.AdminComplaints.Verify)
	admin.Delete("/complaints/:id", cfg.AdminComplaints.SoftDelete)
	admin.Post("/complaints/:id/restore", cfg.AdminComplaints.Restore)
	admin.Delete("/complaints/:id/purge", cfg.AdminComplaints.Purge)
	admin.Get("/complaints/:id/history", cfg.AdminComplaints.History)

	admin.Get("/analytics", cfg.Analytics.Dashboard)
	admin.Post("/analytics/summary", cfg.Analytics.Summarize)
	admin.Post("/analytics/report", cfg.Analytics.Report)
}
