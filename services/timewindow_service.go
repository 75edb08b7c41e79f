package services

import (
	"errors"
	"patron-review-api/config"
	"patron-review-api/models"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Scope selects which applications a listing covers.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeCurrent Scope = "current"
	ScopeLast    Scope = "last"
)

// ParseScope accepts "all", "current" or "last"; empty yields fallback.
func ParseScope(raw string, fallback Scope) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return fallback, nil
	case ScopeAll:
		return ScopeAll, nil
	case ScopeCurrent:
		return ScopeCurrent, nil
	case ScopeLast:
		return ScopeLast, nil
	}
	return "", ErrInvalidInput("scope must be one of all, current, last")
}

// Interval is a closed time range. A nil *Interval matches everything.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i *Interval) Contains(t time.Time) bool {
	if i == nil {
		return true
	}
	return !t.Before(i.Start) && !t.After(i.End)
}

type TimeWindowInput struct {
	Title string
	Start time.Time
	End   time.Time
}

// TimeWindowPatch holds the fields of an update; nil fields are kept.
type TimeWindowPatch struct {
	Title *string
	Start *time.Time
	End   *time.Time
}

type TimeWindowService struct {
	db *gorm.DB
}

func NewTimeWindowService(db *gorm.DB) *TimeWindowService {
	if db == nil {
		db = config.DB
	}
	return &TimeWindowService{db: db}
}

// List returns all windows ordered by start.
func (s *TimeWindowService) List() ([]models.TimeWindow, error) {
	var windows []models.TimeWindow
	if err := s.db.Find(&windows).Error; err != nil {
		return nil, err
	}
	for i := range windows {
		windows[i].Start = windows[i].Start.UTC()
		windows[i].End = windows[i].End.UTC()
	}
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows, nil
}

func (s *TimeWindowService) Get(id int) (*models.TimeWindow, error) {
	var window models.TimeWindow
	if err := s.db.First(&window, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Timewindow not found")
		}
		return nil, err
	}
	window.Start = window.Start.UTC()
	window.End = window.End.UTC()
	return &window, nil
}

// Current returns the window containing now, or nil.
func (s *TimeWindowService) Current(now time.Time) (*models.TimeWindow, error) {
	windows, err := s.List()
	if err != nil {
		return nil, err
	}
	return CurrentWindow(windows, now), nil
}

// Last returns the window with the latest start not after now, or nil.
func (s *TimeWindowService) Last(now time.Time) (*models.TimeWindow, error) {
	windows, err := s.List()
	if err != nil {
		return nil, err
	}
	return LastWindow(windows, now), nil
}

// Resolve turns a scope into the interval listings are filtered by. ScopeAll
// resolves to nil.
func (s *TimeWindowService) Resolve(scope Scope, now time.Time) (*Interval, error) {
	switch scope {
	case ScopeCurrent:
		window, err := s.Current(now)
		if err != nil {
			return nil, err
		}
		if window == nil {
			return nil, ErrInvalidInput("No current timewindow")
		}
		return &Interval{Start: window.Start, End: window.End}, nil
	case ScopeLast:
		window, err := s.Last(now)
		if err != nil {
			return nil, err
		}
		if window == nil {
			return nil, ErrInvalidInput("No last timewindow")
		}
		return &Interval{Start: window.Start, End: window.End}, nil
	default:
		return nil, nil
	}
}

func (s *TimeWindowService) Create(in TimeWindowInput) (*models.TimeWindow, error) {
	in.Start, in.End = in.Start.UTC(), in.End.UTC()
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrInvalidInput("Timewindow title is required")
	}
	if !in.Start.Before(in.End) {
		return nil, ErrInvalidInput("Timewindow start must be before end")
	}

	window := models.TimeWindow{Title: strings.TrimSpace(in.Title), Start: in.Start, End: in.End}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.TimeWindow
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		if other := FindOverlap(existing, in.Start, in.End, 0); other != nil {
			return overlapError(other)
		}
		return tx.Create(&window).Error
	})
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func (s *TimeWindowService) Update(id int, patch TimeWindowPatch) (*models.TimeWindow, error) {
	var window models.TimeWindow
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&window, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("Timewindow not found")
			}
			return err
		}

		if patch.Title != nil {
			if strings.TrimSpace(*patch.Title) == "" {
				return ErrInvalidInput("Timewindow title is required")
			}
			window.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Start != nil {
			window.Start = *patch.Start
		}
		if patch.End != nil {
			window.End = *patch.End
		}
		window.Start, window.End = window.Start.UTC(), window.End.UTC()
		if !window.Start.Before(window.End) {
			return ErrInvalidInput("Timewindow start must be before end")
		}

		var existing []models.TimeWindow
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		if other := FindOverlap(existing, window.Start, window.End, window.ID); other != nil {
			return overlapError(other)
		}

		return tx.Model(&window).Updates(map[string]any{
			"title":     window.Title,
			"starts_at": window.Start,
			"ends_at":   window.End,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// Delete removes the window with its applications and their ratings and rankings.
func (s *TimeWindowService) Delete(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var window models.TimeWindow
		if err := tx.First(&window, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("Timewindow not found")
			}
			return err
		}

		var applicationIDs []int
		if err := tx.Model(&models.Application{}).
			Where("timewindow_id = ?", window.ID).
			Pluck("id", &applicationIDs).Error; err != nil {
			return err
		}
		if err := deleteApplications(tx, applicationIDs); err != nil {
			return err
		}
		return tx.Delete(&window).Error
	})
}

// CurrentWindow returns the window containing now. Windows never overlap, so
// there is at most one.
func CurrentWindow(windows []models.TimeWindow, now time.Time) *models.TimeWindow {
	for i := range windows {
		if windows[i].Contains(now) {
			return &windows[i]
		}
	}
	return nil
}

// LastWindow returns the window with the latest start not after now.
func LastWindow(windows []models.TimeWindow, now time.Time) *models.TimeWindow {
	var last *models.TimeWindow
	for i := range windows {
		if windows[i].Start.After(now) {
			continue
		}
		if last == nil || windows[i].Start.After(last.Start) {
			last = &windows[i]
		}
	}
	return last
}

// FindOverlap returns the first window other than excludeID intersecting
// [start, end].
func FindOverlap(windows []models.TimeWindow, start, end time.Time, excludeID int) *models.TimeWindow {
	for i := range windows {
		if excludeID != 0 && windows[i].ID == excludeID {
			continue
		}
		if windows[i].Overlaps(start, end) {
			return &windows[i]
		}
	}
	return nil
}

func overlapError(other *models.TimeWindow) error {
	return ErrInvalidInput("New time window overlaps with existing one (%s, start: %s, end: %s)",
		other.Title, other.Start.UTC().Format(time.RFC3339), other.End.UTC().Format(time.RFC3339))
}

// deleteApplications removes applications together with the ratings and
// rankings that reference them.
func deleteApplications(tx *gorm.DB, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("application_id IN ?", ids).Delete(&models.PatronRateApplication{}).Error; err != nil {
		return err
	}
	if err := tx.Where("application_id IN ?", ids).Delete(&models.PatronRanking{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Application{}).Error
}
