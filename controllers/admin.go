package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"patron-review-api/config"
	"patron-review-api/middleware"
	"patron-review-api/monitor"
	"patron-review-api/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AddPatronRequest struct {
	TelegramID   string         `json:"telegram_id" binding:"required"`
	TelegramData map[string]any `json:"telegram_data"`
	IsAdmin      bool           `json:"is_admin"`
	Password     string         `json:"password"`
}

type PromoteRequest struct {
	PatronTelegramID string `json:"patron_telegram_id" form:"patron_telegram_id" binding:"required"`
	IsAdmin          *bool  `json:"is_admin" form:"is_admin" binding:"required"`
}

func newPatronService() *services.PatronService {
	return services.NewPatronService(nil, config.App.SuperadminTelegramID)
}

// POST /admin/add-patron
func AddPatron(c *gin.Context) {
	var req AddPatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patron, err := newPatronService().Add(middleware.CurrentPatron(c), services.AddPatronInput{
		TelegramID:   req.TelegramID,
		TelegramData: req.TelegramData,
		IsAdmin:      req.IsAdmin,
		Password:     req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("Patron added", "telegram_id", patron.TelegramID, "is_admin", patron.IsAdmin,
		"by", middleware.CurrentPatron(c).TelegramID)
	c.JSON(http.StatusCreated, patron)
}

// DELETE /admin/delete-patron/:telegram_id
func DeletePatron(c *gin.Context) {
	telegramID := c.Param("telegram_id")
	if err := newPatronService().Delete(middleware.CurrentPatron(c), telegramID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Patron with Telegram ID %s has been deleted", telegramID),
	})
}

// GET /admin/patrons
func ListPatrons(c *gin.Context) {
	patrons, err := newPatronService().ListWithActivity()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patrons)
}

// PUT /admin/promote
func PromotePatron(c *gin.Context) {
	var req PromoteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patron, err := newPatronService().Promote(middleware.CurrentPatron(c), req.PatronTelegramID, *req.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patron)
}

// GET /admin/applications/ranking?scope=all|current|last
func GetApplicationsRanking(c *gin.Context) {
	interval, ok := resolveScope(c, services.ScopeLast)
	if !ok {
		return
	}
	stats, err := services.NewReportService(nil).AggregateRanking(interval)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /admin/applications/export?scope=all|current|last
func ExportApplications(c *gin.Context) {
	interval, ok := resolveScope(c, services.ScopeLast)
	if !ok {
		return
	}
	buf, filename, err := services.NewReportService(nil).Export(interval, now())
	if err != nil {
		respondError(c, err)
		return
	}
	monitor.ExportsTotal.Inc()
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, services.ContentTypeXLSX, buf.Bytes())
}

// DELETE /admin/applications/delete/:id
func DeleteApplication(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := newApplicantService().Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Application with ID %d has been deleted", id),
	})
}

// GET /admin/stats?days=30
func GetStats(c *gin.Context) {
	days, ok := queryDays(c)
	if !ok {
		return
	}
	stats, err := services.NewStatsService(nil).Overall(days, now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /admin/patron-stats/:telegram_id?days=30
func GetPatronStats(c *gin.Context) {
	days, ok := queryDays(c)
	if !ok {
		return
	}
	stats, err := services.NewStatsService(nil).ForPatron(c.Param("telegram_id"), days, now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func queryDays(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return services.DefaultStatsDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return 0, false
	}
	return days, true
}
