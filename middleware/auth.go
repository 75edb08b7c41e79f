package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"patron-review-api/config"
	"patron-review-api/models"
	"patron-review-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const patronContextKey = "patron"

// RequireCapability resolves the session's patron and checks it holds
// capability. The patron is stored in the context for handlers.
func RequireCapability(capability services.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		patron, err := loadPatron(c)
		if err != nil {
			slog.Error("failed to load session patron", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		if err := services.Authorize(patron, capability, config.App.SuperadminTelegramID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(patronContextKey, patron)
		c.Next()
	}
}

// loadPatron returns the patron the session is logged in as, or nil when the
// session is anonymous or the patron no longer exists.
func loadPatron(c *gin.Context) (*models.Patron, error) {
	if v, ok := c.Get(patronContextKey); ok {
		if p, ok := v.(*models.Patron); ok {
			return p, nil
		}
	}

	session := CurrentSession(c)
	if session.PatronID == 0 {
		return nil, nil
	}
	var patron models.Patron
	if err := config.DB.First(&patron, session.PatronID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patron, nil
}

// CurrentPatron returns the patron set by RequireCapability, or nil.
func CurrentPatron(c *gin.Context) *models.Patron {
	if v, ok := c.Get(patronContextKey); ok {
		if p, ok := v.(*models.Patron); ok {
			return p
		}
	}
	return nil
}
