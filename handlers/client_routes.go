// handlers/client_routes.go
package handlers

import (
	"admission-portal/middleware"
	"admission-portal/services"

	"github.com/gofiber/fiber/v2"
)

func SetupClientRoutes(app *fiber.App, appService *services.ApplicationService) {
	secured := app.Group("/client", middleware.UserContextMiddleware())

	secured.Get("/dashboard", appService.GetDashboard)
	secured.Get("/games", appService.GetGames)
	secured.Get("/leaderboard", appService.GetLeaderboard)

	secured.Get("/profile", appService.GetProfile)
	secured.Post("/profile", appService.UpdateProfile)

	secured.Post("/applications", appService.CreateApplication)
	secured.Get("/applications/:id", appService.GetApplication)
	secured.Post("/applications/:id/payment", appService.SubmitPayment)
	secured.Post("/applications/:id/games/submit", appService.SubmitGame)
	secured.Post("/applications/:id/spin/result", appService.PreviewSpin)
	secured.Post("/applications/:id/spin/submit", appService.CommitSpin)
	secured.Get("/applications/:id/chat", appService.GetChat)
	secured.Post("/applications/:id/chat", appService.SendChat)
}
