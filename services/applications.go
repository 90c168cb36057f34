package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"admission-portal/models"
	"admission-portal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationService carries the client-facing admission flow: apply to a
// class, review state, submit payment (which locks discounts), leaderboard,
// chat and profile.
type ApplicationService struct {
	DB         *gorm.DB
	Discounts  *DiscountService
	Badges     *BadgeService
	Activity   *ActivityService
	Weekly     *WeeklyChallengeService
	Engagement *EngagementService
	Spins      *SpinService
}

func NewApplicationService(db *gorm.DB, discounts *DiscountService, badges *BadgeService, activity *ActivityService, weekly *WeeklyChallengeService, engagement *EngagementService, spins *SpinService) *ApplicationService {
	return &ApplicationService{
		DB:         db,
		Discounts:  discounts,
		Badges:     badges,
		Activity:   activity,
		Weekly:     weekly,
		Engagement: engagement,
		Spins:      spins,
	}
}

// loadOwnedApplication fetches the application and enforces ownership.
func (s *ApplicationService) loadOwnedApplication(c *fiber.Ctx) (*models.Application, error) {
	appID := c.Params("id")
	if _, err := uuid.Parse(appID); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid application ID")
	}
	userID := c.Locals("user_id").(string)

	var app models.Application
	err := s.DB.Preload("ClassFee").
		Where("id = ? AND user_id = ?", appID, userID).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "application not found")
	}
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "DB error")
	}
	return &app, nil
}

// applicationView is the JSON shape the UI renders.
func applicationView(app *models.Application) fiber.Map {
	return fiber.Map{
		"id":                 app.ID,
		"status":             app.Status,
		"class_name":         app.ClassFee.ClassName,
		"fee_amount":         app.FeeAmount(),
		"fee_display":        utils.FormatBDT(app.FeeAmount()),
		"spin_discount_pct":  app.SpinDiscountPct,
		"games_discount_pct": app.GamesDiscountPct,
		"bonus_discount_pct": app.BonusDiscountPct,
		"total_discount_pct": app.TotalDiscountPct(),
		"final_price":        app.DiscountedAmount(),
		"final_display":      utils.FormatBDT(app.DiscountedAmount()),
		"discounts_locked":   app.DiscountsLocked(),
		"can_spin":           app.CanSpin(),
		"payment_method":     app.PaymentMethod,
		"paid_at":            app.PaidAt,
		"created_at":         app.CreatedAt,
	}
}

// GetDashboard returns the fee table, the user's applications, streak and
// recent badges plus the active announcement.
func (s *ApplicationService) GetDashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var fees []models.ClassFee
	if err := s.DB.Order("class_name ASC").Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load fees"})
	}

	var apps []models.Application
	if err := s.DB.Preload("ClassFee").Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load applications"})
	}
	appViews := make([]fiber.Map, len(apps))
	for i := range apps {
		appViews[i] = applicationView(&apps[i])
	}

	streak, err := s.Activity.StreakDays(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute streak"})
	}

	badges, err := s.Badges.RecentBadges(userID, 5)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load badges"})
	}

	var announcement *models.Announcement
	var row models.Announcement
	err = s.DB.Where("is_active = ?", true).Order("created_at DESC").First(&row).Error
	if err == nil {
		announcement = &row
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load announcement"})
	}

	return c.JSON(fiber.Map{
		"class_fees":    fees,
		"applications":  appViews,
		"streak_days":   streak,
		"recent_badges": badges,
		"announcement":  announcement,
	})
}

// GetGames lists the playable game identifiers for the games screen.
func (s *ApplicationService) GetGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"games": KnownGameKeys()})
}

// CreateApplication opens an admission request for one class. Re-applying for
// the same class returns the existing application.
func (s *ApplicationService) CreateApplication(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		ClassFeeID string `json:"class_fee_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var fee models.ClassFee
	if err := s.DB.First(&fee, "id = ?", req.ClassFeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class selection"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var existing models.Application
	err := s.DB.Preload("ClassFee").
		Where("user_id = ? AND class_fee_id = ?", userID, fee.ID).
		First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"application": applicationView(&existing), "existing": true})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	app := models.Application{
		ID:         uuid.NewString(),
		UserID:     userID,
		ClassFeeID: fee.ID,
		Status:     models.AppStatusPending,
	}
	if err := s.DB.Create(&app).Error; err != nil {
		log.Printf("DB Error creating application: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create application"})
	}
	app.ClassFee = fee

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"application": applicationView(&app), "existing": false})
}

// GetApplication returns one application with its score history, the weekly
// challenge and the user's streak and recent badges.
func (s *ApplicationService) GetApplication(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}
	userID := c.Locals("user_id").(string)

	var scores []models.GameScore
	if err := s.DB.Where("application_id = ?", app.ID).Order("created_at DESC").Find(&scores).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load scores"})
	}

	weekly, err2 := s.Weekly.ChallengeFor(s.DB, app, time.Now())
	if err2 != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute weekly challenge"})
	}

	streak, err2 := s.Activity.StreakDays(userID, time.Now())
	if err2 != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute streak"})
	}

	badges, err2 := s.Badges.RecentBadges(userID, 5)
	if err2 != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load badges"})
	}

	bests, err2 := s.Engagement.PersonalBests(userID, 5)
	if err2 != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load personal bests"})
	}

	return c.JSON(fiber.Map{
		"application":      applicationView(app),
		"scores":           scores,
		"weekly_challenge": weekly,
		"streak_days":      streak,
		"recent_badges":    badges,
		"personal_bests":   bests,
	})
}

// SubmitPayment records the payment reference and locks all discounts. Already
// submitted payment is a policy no-op, not an error.
func (s *ApplicationService) SubmitPayment(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}
	userID := c.Locals("user_id").(string)

	if app.DiscountsLocked() {
		return c.JSON(fiber.Map{"ok": false, "message": "Payment already submitted. Discounts are locked."})
	}

	var req struct {
		Method        string `json:"method"`
		Reference     string `json:"reference"`
		ProofFilename string `json:"proof_filename"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method != "bkash" && method != "bank" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Choose a valid payment method"})
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Enter a transaction/reference id"})
	}

	var proofRef *string
	if strings.TrimSpace(req.ProofFilename) != "" {
		safe := utils.SafeProofFilename(app.ID, req.ProofFilename)
		proofRef = &safe
	}

	var badgeFresh bool
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.Discounts.LockOnPayment(tx, app, method, reference, proofRef)
		if err != nil {
			return err
		}
		if !locked {
			return nil
		}
		if err := s.Activity.RecordDay(tx, userID, time.Now()); err != nil {
			return err
		}
		badgeFresh, err = s.Badges.AwardOnce(tx, userID, "payment_submitted", "Payment Submitted", "💳")
		return err
	})
	if txErr != nil {
		log.Printf("DB Error submitting payment: %v", txErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit payment"})
	}

	return c.JSON(fiber.Map{
		"ok":           true,
		"application":  applicationView(app),
		"badge_earned": badgeFresh,
	})
}

// SubmitGame runs the engagement pipeline for one game result.
func (s *ApplicationService) SubmitGame(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}
	userID := c.Locals("user_id").(string)

	var req struct {
		GameKey string `json:"game_key"`
		Score   *int   `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.GameKey) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_key is required"})
	}
	if req.Score == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score is required"})
	}

	result, err2 := s.Engagement.SubmitGameScore(app, userID, req.GameKey, *req.Score)
	if err2 != nil {
		log.Printf("DB Error submitting game score: %v", err2)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit score"})
	}
	if result.Locked {
		return c.JSON(fiber.Map{"ok": false, "message": "Payment already submitted. Discounts are locked.", "result": result})
	}
	return c.JSON(fiber.Map{"ok": true, "result": result})
}

// PreviewSpin draws (or replays) the wheel prize without persisting it.
func (s *ApplicationService) PreviewSpin(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}
	return c.JSON(s.Spins.Preview(app))
}

// CommitSpin durably records the previewed prize.
func (s *ApplicationService) CommitSpin(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}
	userID := c.Locals("user_id").(string)

	result, err2 := s.Spins.Commit(app, userID)
	if err2 != nil {
		log.Printf("DB Error committing spin: %v", err2)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to commit spin"})
	}
	return c.JSON(result)
}

// GetLeaderboard returns the top applications by raw discount sum with
// privacy-safe labels, optionally filtered by class.
func (s *ApplicationService) GetLeaderboard(c *fiber.Ctx) error {
	query := s.DB.Preload("ClassFee").Model(&models.Application{})
	if feeID := c.Query("class_fee_id"); feeID != "" {
		if _, err := uuid.Parse(feeID); err == nil {
			query = query.Where("class_fee_id = ?", feeID)
		}
	}

	var apps []models.Application
	err := query.
		Order("(spin_discount_pct + games_discount_pct + bonus_discount_pct) DESC, created_at ASC").
		Limit(10).
		Find(&apps).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load leaderboard"})
	}

	rows := make([]fiber.Map, len(apps))
	for i, a := range apps {
		rows[i] = fiber.Map{
			"label":      "Student #A" + strings.ToUpper(a.ID[:8]),
			"class_name": a.ClassFee.ClassName,
			"discount":   a.TotalDiscountPct(),
		}
	}
	return c.JSON(fiber.Map{"rows": rows})
}

// GetChat lists the application's conversation oldest-first.
func (s *ApplicationService) GetChat(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}

	var messages []models.ChatMessage
	if err := s.DB.Where("application_id = ?", app.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load messages"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// SendChat appends one client message to the conversation.
func (s *ApplicationService) SendChat(c *fiber.Ctx) error {
	app, err := s.loadOwnedApplication(c)
	if err != nil {
		return err
	}
	userID := c.Locals("user_id").(string)

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
	}

	msg := models.ChatMessage{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		SenderRole:    "client",
		SenderName:    user.Name,
		Message:       text,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send message"})
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetProfile returns the user's profile with badges and streak.
func (s *ApplicationService) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
	}

	var badges []models.BadgeAward
	if err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&badges).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load badges"})
	}

	streak, err := s.Activity.StreakDays(userID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute streak"})
	}

	return c.JSON(fiber.Map{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"badges":      badges,
		"streak_days": streak,
	})
}

// UpdateProfile changes the display name; identity fields stay immutable.
func (s *ApplicationService) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name must be at least 2 characters"})
	}
	if len(name) > 120 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is too long"})
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Update("name", name).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
	}
	return c.JSON(fiber.Map{"ok": true, "name": name})
}
