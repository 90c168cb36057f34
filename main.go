package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"admission-portal/handlers"
	"admission-portal/models"
	"admission-portal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError so unique-constraint races surface as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ClassFee{},
		&models.Application{},
		&models.ChatMessage{},
		&models.GameScore{},
		&models.UserGameStat{},
		&models.BadgeAward{},
		&models.UserActivityDay{},
		&models.AdminAuditLog{},
		&models.Announcement{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.EnsureSeedData(db); err != nil {
		log.Fatal("failed to seed class fees:", err)
	}

	discountService := services.NewDiscountService(db)
	badgeService := services.NewBadgeService(db)
	activityService := services.NewActivityService(db)
	weeklyService := services.NewWeeklyChallengeService(db)
	engagementService := services.NewEngagementService(db, discountService, badgeService, activityService, weeklyService)
	spinService := services.NewSpinService(db, discountService, badgeService, activityService)
	appService := services.NewApplicationService(db, discountService, badgeService, activityService, weeklyService, engagementService, spinService)
	adminService := services.NewAdminService(db)

	spinService.StartPendingSweeper()

	handlers.SetupClientRoutes(app, appService)
	handlers.SetupAdminRoutes(app, adminService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5100"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Spin pending-slot sweeper running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
