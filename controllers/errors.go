package controllers

import (
	"log/slog"
	"net/http"
	"patron-review-api/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// now is the clock handlers use; tests replace it.
var now = time.Now

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindAuthenticationRequired, services.KindAuthorizationDenied, services.KindVerificationFailed:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": message}. Unclassified errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(statusFor(kind), gin.H{"error": err.Error()})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// resolveScope reads ?scope= and turns it into a filter interval.
func resolveScope(c *gin.Context, fallback services.Scope) (*services.Interval, bool) {
	scope, err := services.ParseScope(c.Query("scope"), fallback)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	interval, err := services.NewTimeWindowService(nil).Resolve(scope, now().UTC())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return interval, true
}
