package services

import (
	"patron-review-api/config"
	"patron-review-api/models"
	"sort"
	"time"

	"gorm.io/gorm"
)

// DefaultStatsDays is the lookback used when a request names none.
const DefaultStatsDays = 30

type DailyPatronStats struct {
	Date         string `json:"date"`
	RatingCount  int    `json:"rating_count"`
	RankingCount int    `json:"ranking_count"`
}

type DailyApplicationStats struct {
	Date                 string `json:"date"`
	ApplicationsReceived int    `json:"applications_received"`
}

type OverallStats struct {
	TotalPatrons        int64                   `json:"total_patrons"`
	TotalApplications   int64                   `json:"total_applications"`
	PatronActivityByDay []DailyPatronStats      `json:"patron_activity_by_day"`
	ApplicationsByDay   []DailyApplicationStats `json:"applications_by_day"`
}

type PatronStats struct {
	PatronID      int                `json:"patron_id"`
	TotalRatings  int64              `json:"total_ratings"`
	ActivityByDay []DailyPatronStats `json:"activity_by_day"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	if db == nil {
		db = config.DB
	}
	return &StatsService{db: db}
}

// Overall summarises applications and reviewer activity over the last days.
// Days without activity are omitted from the series.
func (s *StatsService) Overall(days int, now time.Time) (*OverallStats, error) {
	if days <= 0 {
		return nil, ErrInvalidInput("days must be positive")
	}
	since := now.UTC().AddDate(0, 0, -days)

	out := &OverallStats{}
	if err := s.db.Model(&models.Patron{}).Count(&out.TotalPatrons).Error; err != nil {
		return nil, err
	}

	var submitted []time.Time
	if err := s.db.Model(&models.Application{}).Pluck("submitted_at", &submitted).Error; err != nil {
		return nil, err
	}
	perDay := make(map[string]int)
	for _, at := range submitted {
		if at.Before(since) {
			continue
		}
		out.TotalApplications++
		perDay[at.UTC().Format(models.DayLayout)]++
	}
	out.ApplicationsByDay = make([]DailyApplicationStats, 0, len(perDay))
	for day, n := range perDay {
		out.ApplicationsByDay = append(out.ApplicationsByDay, DailyApplicationStats{Date: day, ApplicationsReceived: n})
	}
	sort.Slice(out.ApplicationsByDay, func(i, j int) bool {
		return out.ApplicationsByDay[i].Date < out.ApplicationsByDay[j].Date
	})

	var rows []models.PatronDailyStats
	if err := s.db.Where("day >= ?", since.Format(models.DayLayout)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out.PatronActivityByDay = sumByDay(rows)
	return out, nil
}

// ForPatron reports one patron's lifetime rating count and daily activity.
func (s *StatsService) ForPatron(telegramID string, days int, now time.Time) (*PatronStats, error) {
	if days <= 0 {
		return nil, ErrInvalidInput("days must be positive")
	}
	var patron models.Patron
	if err := s.db.Where("telegram_id = ?", telegramID).First(&patron).Error; err != nil {
		if errIsNotFound(err) {
			return nil, ErrNotFound("Patron not found")
		}
		return nil, err
	}

	out := &PatronStats{PatronID: patron.ID}
	if err := s.db.Model(&models.PatronRateApplication{}).
		Where("patron_id = ?", patron.ID).
		Count(&out.TotalRatings).Error; err != nil {
		return nil, err
	}

	since := now.UTC().AddDate(0, 0, -days).Format(models.DayLayout)
	var rows []models.PatronDailyStats
	if err := s.db.Where("patron_id = ? AND day >= ?", patron.ID, since).Find(&rows).Error; err != nil {
		return nil, err
	}
	out.ActivityByDay = sumByDay(rows)
	return out, nil
}

// sumByDay folds per-patron counters into one ascending series per day.
func sumByDay(rows []models.PatronDailyStats) []DailyPatronStats {
	byDay := make(map[string]*DailyPatronStats)
	for _, r := range rows {
		d, ok := byDay[r.Day]
		if !ok {
			d = &DailyPatronStats{Date: r.Day}
			byDay[r.Day] = d
		}
		d.RatingCount += r.RatingCount
		d.RankingCount += r.RankingCount
	}
	out := make([]DailyPatronStats, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
