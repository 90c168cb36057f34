package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"admission-portal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService covers fee table management, application review, announcements,
// fair-play review and the audit trail behind them.
type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// audit writes one audit row. Audit failures are logged, never surfaced; the
// admin action itself already succeeded.
func (s *AdminService) audit(c *fiber.Ctx, action string, targetType, targetID, detail string) {
	adminID, _ := c.Locals("user_id").(string)

	row := models.AdminAuditLog{
		ID:          uuid.NewString(),
		AdminUserID: adminID,
		Action:      action,
	}
	if targetType != "" {
		row.TargetType = &targetType
	}
	if targetID != "" {
		row.TargetID = &targetID
	}
	if detail != "" {
		row.Detail = &detail
	}
	if ip := c.IP(); ip != "" {
		row.IPAddress = &ip
	}
	if ua := c.Get("User-Agent"); ua != "" {
		if len(ua) > 255 {
			ua = ua[:255]
		}
		row.UserAgent = &ua
	}

	if err := s.DB.Create(&row).Error; err != nil {
		log.Printf("[AUDIT] Failed to record %s: %v", action, err)
	}
}

// GetDashboard lists the fee table and the latest applications.
func (s *AdminService) GetDashboard(c *fiber.Ctx) error {
	var fees []models.ClassFee
	if err := s.DB.Order("class_name ASC").Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load fees"})
	}

	var apps []models.Application
	if err := s.DB.Preload("ClassFee").Preload("User").Order("created_at DESC").Limit(50).Find(&apps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load applications"})
	}

	return c.JSON(fiber.Map{"fees": fees, "applications": apps})
}

// GetAnalytics returns headline counts for the analytics screen.
func (s *AdminService) GetAnalytics(c *fiber.Ctx) error {
	var totalUsers, totalApps, pending, accepted, rejected, paid int64

	s.DB.Model(&models.User{}).Count(&totalUsers)
	s.DB.Model(&models.Application{}).Count(&totalApps)
	s.DB.Model(&models.Application{}).Where("status = ?", models.AppStatusPending).Count(&pending)
	s.DB.Model(&models.Application{}).Where("status = ?", models.AppStatusAccepted).Count(&accepted)
	s.DB.Model(&models.Application{}).Where("status = ?", models.AppStatusRejected).Count(&rejected)
	s.DB.Model(&models.Application{}).Where("payment_method IS NOT NULL").Count(&paid)

	s.audit(c, "view_analytics", "", "", "")

	return c.JSON(fiber.Map{
		"total_users": totalUsers,
		"total_apps":  totalApps,
		"pending":     pending,
		"accepted":    accepted,
		"rejected":    rejected,
		"paid":        paid,
	})
}

// GetAuditLog lists the latest audit rows.
func (s *AdminService) GetAuditLog(c *fiber.Ctx) error {
	var logs []models.AdminAuditLog
	if err := s.DB.Order("created_at DESC").Limit(200).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load audit log"})
	}
	s.audit(c, "view_audit_log", "", "", "")
	return c.JSON(fiber.Map{"logs": logs})
}

// GetFlaggedScores lists submissions held back by the fair-play filter.
func (s *AdminService) GetFlaggedScores(c *fiber.Ctx) error {
	var flagged []models.GameScore
	if err := s.DB.Where("is_flagged = ?", true).Order("created_at DESC").Limit(200).Find(&flagged).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load flagged scores"})
	}
	s.audit(c, "view_fair_play", "", "", "")
	return c.JSON(fiber.Map{"scores": flagged})
}

// UpdateFee changes one class fee amount.
func (s *AdminService) UpdateFee(c *fiber.Ctx) error {
	feeID := c.Params("id")
	if _, err := uuid.Parse(feeID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee ID"})
	}

	var fee models.ClassFee
	if err := s.DB.First(&fee, "id = ?", feeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee row not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		AmountBDT int `json:"amount_bdt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.AmountBDT <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be positive"})
	}

	oldAmount := fee.AmountBDT
	fee.AmountBDT = req.AmountBDT
	if err := s.DB.Save(&fee).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update fee"})
	}

	s.audit(c, "update_fee", "ClassFee", fee.ID, fmt.Sprintf("%s: %d -> %d", fee.ClassName, oldAmount, req.AmountBDT))
	return c.JSON(fee)
}

// SetApplicationStatus moves an application between pending/accepted/rejected.
func (s *AdminService) SetApplicationStatus(c *fiber.Ctx) error {
	appID := c.Params("id")
	if _, err := uuid.Parse(appID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid application ID"})
	}

	var app models.Application
	if err := s.DB.First(&app, "id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case models.AppStatusPending, models.AppStatusAccepted, models.AppStatusRejected:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
	}

	oldStatus := app.Status
	app.Status = status
	if err := s.DB.Model(&app).Update("status", status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update status"})
	}

	s.audit(c, "set_application_status", "Application", app.ID, fmt.Sprintf("%s -> %s", oldStatus, status))
	return c.JSON(fiber.Map{"ok": true, "status": status})
}

// GetApplication returns an application with its owner and conversation.
func (s *AdminService) GetApplication(c *fiber.Ctx) error {
	appID := c.Params("id")
	if _, err := uuid.Parse(appID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid application ID"})
	}

	var app models.Application
	err := s.DB.Preload("ClassFee").Preload("User").First(&app, "id = ?", appID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var messages []models.ChatMessage
	if err := s.DB.Where("application_id = ?", app.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load messages"})
	}

	return c.JSON(fiber.Map{"application": app, "messages": messages})
}

// SendChat appends one admin message to an application's conversation.
func (s *AdminService) SendChat(c *fiber.Ctx) error {
	appID := c.Params("id")
	if _, err := uuid.Parse(appID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid application ID"})
	}

	var app models.Application
	if err := s.DB.First(&app, "id = ?", appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

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

	adminID, _ := c.Locals("user_id").(string)
	var admin models.User
	senderName := "Admin"
	if err := s.DB.First(&admin, "id = ?", adminID).Error; err == nil {
		senderName = admin.Name
	}

	msg := models.ChatMessage{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		SenderRole:    "admin",
		SenderName:    senderName,
		Message:       text,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send message"})
	}

	detail := text
	if len(detail) > 500 {
		detail = detail[:500]
	}
	s.audit(c, "admin_chat_send", "Application", app.ID, detail)
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ListAnnouncements returns the latest announcements.
func (s *AdminService) ListAnnouncements(c *fiber.Ctx) error {
	var rows []models.Announcement
	if err := s.DB.Order("created_at DESC").Limit(50).Find(&rows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load announcements"})
	}
	s.audit(c, "view_announcements", "", "", "")
	return c.JSON(fiber.Map{"announcements": rows})
}

// CreateAnnouncement saves a new announcement; activating it deactivates the
// rest so at most one stays live.
func (s *AdminService) CreateAnnouncement(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		IsActive bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if len(title) < 3 || len(body) < 3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and body are required"})
	}
	if len(title) > 120 {
		title = title[:120]
	}

	row := models.Announcement{
		ID:       uuid.NewString(),
		Title:    title,
		Body:     body,
		IsActive: req.IsActive,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsActive {
			if err := tx.Model(&models.Announcement{}).Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save announcement"})
	}

	s.audit(c, "create_announcement", "Announcement", row.ID, row.Title)
	return c.Status(fiber.StatusCreated).JSON(row)
}

// ToggleAnnouncement flips an announcement's active flag, keeping at most one
// announcement live.
func (s *AdminService) ToggleAnnouncement(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid announcement ID"})
	}

	var row models.Announcement
	if err := s.DB.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Announcement not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	newState := !row.IsActive
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if newState {
			if err := tx.Model(&models.Announcement{}).Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		row.IsActive = newState
		return tx.Model(&row).Update("is_active", newState).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update announcement"})
	}

	s.audit(c, "toggle_announcement", "Announcement", row.ID, fmt.Sprintf("is_active=%t", row.IsActive))
	return c.JSON(row)
}
