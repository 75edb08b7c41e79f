package services

import (
	"errors"
	"fmt"
	"patron-review-api/config"
	"patron-review-api/models"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateInput is a patron's verdict on an application. A nil Rate stores the
// comment and document notes without counting as a vote.
type RateInput struct {
	Rate    *models.Rating
	Comment string
	Docs    models.Docs
}

type RatingService struct {
	db  *gorm.DB
	Now func() time.Time
}

func NewRatingService(db *gorm.DB) *RatingService {
	if db == nil {
		db = config.DB
	}
	return &RatingService{db: db, Now: time.Now}
}

// Rate creates or replaces the patron's rating of an application.
func (s *RatingService) Rate(patronID, applicationID int, in RateInput) (*models.PatronRateApplication, error) {
	if in.Rate != nil && !in.Rate.Valid() {
		return nil, ErrInvalidInput("rate must be one of -1, 0, 1")
	}

	row := models.PatronRateApplication{
		PatronID:      patronID,
		ApplicationID: applicationID,
		Docs:          datatypes.NewJSONType(in.Docs),
		Comment:       in.Comment,
	}
	if in.Rate != nil {
		row.Rate = *in.Rate
		row.Rated = true
	}

	now := s.Now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Application{}).Where("id = ?", applicationID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound("Application not found")
		}

		row.UpdatedAt = now
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "patron_id"}, {Name: "application_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"docs", "rate", "rated", "comment", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return bumpDailyStats(tx, patronID, now, 1, 0)
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// RatedApplications returns the patron's rating rows for applications
// submitted inside interval.
func (s *RatingService) RatedApplications(patronID int, interval *Interval) ([]models.PatronRateApplication, error) {
	var rows []models.PatronRateApplication
	if err := s.db.Preload("Application").
		Where("patron_id = ?", patronID).
		Order("application_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.PatronRateApplication, 0, len(rows))
	for _, r := range rows {
		if r.Application != nil && interval.Contains(r.Application.SubmittedAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SetRanking replaces the patron's ranking with ids in order, best first.
func (s *RatingService) SetRanking(patronID int, ids []int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return ErrInvalidInput("Application %d is ranked more than once", id)
		}
		seen[id] = true
	}

	now := s.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			var found []int
			if err := tx.Model(&models.Application{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
				return err
			}
			if missing := missingIDs(ids, found); len(missing) > 0 {
				return ErrInvalidInput("Some applications do not exist: %v", missing)
			}
		}

		if err := tx.Where("patron_id = ?", patronID).Delete(&models.PatronRanking{}).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			rows := make([]models.PatronRanking, len(ids))
			for i, id := range ids {
				rows[i] = models.PatronRanking{PatronID: patronID, ApplicationID: id, Rank: i, UpdatedAt: now}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return bumpDailyStats(tx, patronID, now, 0, 1)
	})
}

// GetRanking returns the patron's ranked applications, best first, limited
// to applications submitted inside interval. Ranks are not renumbered after
// filtering.
func (s *RatingService) GetRanking(patronID int, interval *Interval) ([]models.PatronRanking, error) {
	var rows []models.PatronRanking
	if err := s.db.Preload("Application").
		Where("patron_id = ?", patronID).
		Order("rank_position").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.PatronRanking, 0, len(rows))
	for _, r := range rows {
		if r.Application != nil && interval.Contains(r.Application.SubmittedAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

// RankedApplications is GetRanking projected onto the applications.
func (s *RatingService) RankedApplications(patronID int, interval *Interval) ([]models.Application, error) {
	rows, err := s.GetRanking(patronID, interval)
	if err != nil {
		return nil, err
	}
	apps := make([]models.Application, len(rows))
	for i, r := range rows {
		apps[i] = *r.Application
	}
	return apps, nil
}

func missingIDs(want, found []int) []int {
	have := make(map[int]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var missing []int
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)
	return missing
}

// bumpDailyStats adds to the patron's counters for the UTC day of at.
func bumpDailyStats(tx *gorm.DB, patronID int, at time.Time, ratings, rankings int) error {
	day := at.UTC().Format(models.DayLayout)
	stats := models.PatronDailyStats{Day: day, PatronID: patronID}
	if err := tx.Where("day = ? AND patron_id = ?", day, patronID).FirstOrCreate(&stats).Error; err != nil {
		return fmt.Errorf("daily stats: %w", err)
	}
	return tx.Model(&models.PatronDailyStats{}).
		Where("day = ? AND patron_id = ?", day, patronID).
		Updates(map[string]any{
			"rating_count":  gorm.Expr("rating_count + ?", ratings),
			"ranking_count": gorm.Expr("ranking_count + ?", rankings),
		}).Error
}

// errIsNotFound reports gorm's record-not-found error.
func errIsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
