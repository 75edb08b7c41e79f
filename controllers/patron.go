package controllers

import (
	"errors"
	"io"
	"net/http"
	"patron-review-api/middleware"
	"patron-review-api/models"
	"patron-review-api/monitor"
	"patron-review-api/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RateApplicationRequest struct {
	Rate    *int        `json:"rate"`
	Comment string      `json:"comment"`
	Docs    models.Docs `json:"docs"`
}

type SetRankingRequest struct {
	ApplicationIDs []int `json:"application_ids" binding:"required"`
}

type RankingResponse struct {
	PatronID     int                  `json:"patron_id"`
	Applications []models.Application `json:"applications"`
}

func newRatingService() *services.RatingService {
	svc := services.NewRatingService(nil)
	svc.Now = now
	return svc
}

// GET /patron/me
func GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentPatron(c))
}

// GET /patron/me/rated-applications?scope=all|current|last
func GetRatedApplications(c *gin.Context) {
	interval, ok := resolveScope(c, services.ScopeLast)
	if !ok {
		return
	}
	patron := middleware.CurrentPatron(c)
	rows, err := newRatingService().RatedApplications(patron.ID, interval)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /patron/applications?scope=all|current|last
func ListApplications(c *gin.Context) {
	interval, ok := resolveScope(c, services.ScopeLast)
	if !ok {
		return
	}
	apps, err := newApplicantService().List(interval)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// GET /patron/applications/:id
func GetApplication(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	application, err := newApplicantService().Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}

// POST /patron/rate-application/:id
//
// Body: {"rate": -1|0|1, "comment": "...", "docs": {...}}. rate and comment
// may also be passed as query parameters. Omitting rate keeps the row
// unrated.
func RateApplication(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// An empty body, chunked or not, is the same as {}.
	var req RateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if raw, ok := c.GetQuery("rate"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate must be one of -1, 0, 1"})
			return
		}
		req.Rate = &v
	}
	if comment, ok := c.GetQuery("comment"); ok {
		req.Comment = comment
	}

	in := services.RateInput{Comment: req.Comment, Docs: req.Docs}
	if req.Rate != nil {
		rate := models.Rating(*req.Rate)
		in.Rate = &rate
	}

	patron := middleware.CurrentPatron(c)
	row, err := newRatingService().Rate(patron.ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	monitor.RatingsTotal.Inc()
	c.JSON(http.StatusOK, row)
}

// GET /patron/ranking?scope=all|current|last
func GetRanking(c *gin.Context) {
	interval, ok := resolveScope(c, services.ScopeLast)
	if !ok {
		return
	}
	respondRanking(c, middleware.CurrentPatron(c), interval)
}

// PUT /patron/ranking {"application_ids": [...]}
//
// The response covers every window unless ?scope= narrows it.
func SetRanking(c *gin.Context) {
	var req SetRankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval, ok := resolveScope(c, services.ScopeAll)
	if !ok {
		return
	}

	patron := middleware.CurrentPatron(c)
	if err := newRatingService().SetRanking(patron.ID, req.ApplicationIDs); err != nil {
		respondError(c, err)
		return
	}
	monitor.RankingUpdatesTotal.Inc()
	respondRanking(c, patron, interval)
}

func respondRanking(c *gin.Context, patron *models.Patron, interval *services.Interval) {
	apps, err := newRatingService().RankedApplications(patron.ID, interval)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, RankingResponse{PatronID: patron.ID, Applications: apps})
}
