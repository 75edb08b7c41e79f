package controllers

import (
	"fmt"
	"net/http"
	"patron-review-api/services"
	"time"

	"github.com/gin-gonic/gin"
)

type CreateTimeWindowRequest struct {
	Title string    `json:"title" binding:"required"`
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

type EditTimeWindowRequest struct {
	Title *string    `json:"title"`
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// GET /admin/timewindows
func ListTimeWindows(c *gin.Context) {
	windows, err := services.NewTimeWindowService(nil).List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

// POST /admin/timewindows, POST /admin/create-timewindow
func CreateTimeWindow(c *gin.Context) {
	var req CreateTimeWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := services.NewTimeWindowService(nil).Create(services.TimeWindowInput{
		Title: req.Title,
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, window)
}

// PATCH|PUT /admin/timewindows/:id
func UpdateTimeWindow(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req EditTimeWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := services.NewTimeWindowService(nil).Update(id, services.TimeWindowPatch{
		Title: req.Title,
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, window)
}

// DELETE /admin/timewindows/:id
func DeleteTimeWindow(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := services.NewTimeWindowService(nil).Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Timewindow with ID %d has been deleted", id),
	})
}
