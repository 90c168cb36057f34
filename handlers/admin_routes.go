// handlers/admin_routes.go
package handlers

import (
	"admission-portal/middleware"
	"admission-portal/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService) {
	admin := app.Group("/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Get("/dashboard", adminService.GetDashboard)
	admin.Get("/analytics", adminService.GetAnalytics)
	admin.Get("/audit", adminService.GetAuditLog)
	admin.Get("/fair-play", adminService.GetFlaggedScores)

	admin.Post("/fees/:id", adminService.UpdateFee)

	admin.Get("/applications/:id", adminService.GetApplication)
	admin.Post("/applications/:id/status", adminService.SetApplicationStatus)
	admin.Post("/applications/:id/chat", adminService.SendChat)

	admin.Get("/announcements", adminService.ListAnnouncements)
	admin.Post("/announcements", adminService.CreateAnnouncement)
	admin.Post("/announcements/:id/toggle", adminService.ToggleAnnouncement)
}
