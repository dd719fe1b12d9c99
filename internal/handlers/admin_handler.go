package handlers

import (
	"log"
	"net/http"

	"marriage-bot/internal/auth"
	"marriage-bot/internal/models"
	"marriage-bot/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler exposes the operational HTTP API: stats, manual resets and
// per-user lookups.
type AdminHandler struct {
	db              *gorm.DB
	marriageService *services.MarriageService
	adminToken      string
}

func NewAdminHandler(db *gorm.DB, marriageService *services.MarriageService, adminToken string) *AdminHandler {
	return &AdminHandler{
		db:              db,
		marriageService: marriageService,
		adminToken:      adminToken,
	}
}

// Login exchanges the configured admin token for a JWT
// POST /auth/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Token != h.adminToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
		return
	}

	token, err := auth.GenerateToken("admin")
	if err != nil {
		log.Printf("Token generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetStats returns platform counters
// GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var proposalCounts []statusCount
	if err := h.db.Model(&models.Proposal{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&proposalCounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count proposals"})
		return
	}

	var marriedCount, divorcedCount int64
	h.db.Model(&models.Marriage{}).Where("status = ?", models.MarriageStatusMarried).Count(&marriedCount)
	h.db.Model(&models.Marriage{}).Where("status = ?", models.MarriageStatusDivorced).Count(&divorcedCount)

	var recordCount int64
	h.db.Model(&models.BabyRecord{}).Count(&recordCount)

	var babyTotal int64
	h.db.Model(&models.BabyRecord{}).Select("COALESCE(SUM(baby_count), 0)").Row().Scan(&babyTotal)

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposalCounts,
		"marriages": gin.H{
			"married":  marriedCount,
			"divorced": divorcedCount,
		},
		"baby_records": recordCount,
		"baby_total":   babyTotal,
	})
}

// TriggerReset wipes proposals and marriages immediately
// POST /api/admin/reset
func (h *AdminHandler) TriggerReset(c *gin.Context) {
	if err := h.marriageService.DailyResetAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset complete"})
}

// TriggerSweep expires stale pending proposals immediately
// POST /api/admin/sweep
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	count, err := h.marriageService.CleanupExpiredProposals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"swept": count})
}

// GetUserMarriages lists a user's current marriages
// GET /api/admin/marriages/:user
func (h *AdminHandler) GetUserMarriages(c *gin.Context) {
	userID := c.Param("user")

	marriages, err := h.marriageService.GetMarriages(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get marriages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marriages": marriages})
}

// GetUserBabies lists a user's baby records with the running total
// GET /api/admin/babies/:user
func (h *AdminHandler) GetUserBabies(c *gin.Context) {
	userID := c.Param("user")

	records, err := h.marriageService.BabyRecords(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get baby records"})
		return
	}

	total, err := h.marriageService.TotalBabies(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to total babies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
	})
}
