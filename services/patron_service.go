package services

import (
	"log/slog"
	"patron-review-api/config"
	"patron-review-api/models"
	"patron-review-api/utils"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AddPatronInput struct {
	TelegramID   string
	TelegramData map[string]any
	IsAdmin      bool
	Password     string
}

// PatronRanking is a patron's ranked applications, best first.
type PatronRanking struct {
	PatronID     int                  `json:"patron_id"`
	Applications []models.Application `json:"applications"`
}

// PatronActivity is a patron with the ratings and ranking they submitted.
type PatronActivity struct {
	Patron  models.Patron                  `json:"patron"`
	Ratings []models.PatronRateApplication `json:"ratings"`
	Ranking PatronRanking                  `json:"ranking"`
}

type PatronService struct {
	db                   *gorm.DB
	superadminTelegramID string
}

func NewPatronService(db *gorm.DB, superadminTelegramID string) *PatronService {
	if db == nil {
		db = config.DB
	}
	return &PatronService{db: db, superadminTelegramID: superadminTelegramID}
}

func (s *PatronService) GetByID(id int) (*models.Patron, error) {
	var patron models.Patron
	if err := s.db.First(&patron, id).Error; err != nil {
		if errIsNotFound(err) {
			return nil, ErrNotFound("Patron not found")
		}
		return nil, err
	}
	return &patron, nil
}

func (s *PatronService) GetByTelegramID(telegramID string) (*models.Patron, error) {
	var patron models.Patron
	if err := s.db.Where("telegram_id = ?", telegramID).First(&patron).Error; err != nil {
		if errIsNotFound(err) {
			return nil, ErrNotFound("Patron not found")
		}
		return nil, err
	}
	return &patron, nil
}

// Add registers a patron on behalf of actor. Only the superadmin may create
// admins.
func (s *PatronService) Add(actor *models.Patron, in AddPatronInput) (*models.Patron, error) {
	in.TelegramID = strings.TrimSpace(in.TelegramID)
	if in.TelegramID == "" {
		return nil, ErrInvalidInput("telegram_id is required")
	}
	if in.IsAdmin && !IsSuperadmin(actor, s.superadminTelegramID) {
		return nil, ErrAuthorizationDenied("Only superadmin can add admin patrons")
	}

	patron := models.Patron{
		TelegramID:   in.TelegramID,
		TelegramData: datatypes.JSONMap(in.TelegramData),
		IsAdmin:      in.IsAdmin,
	}
	if patron.TelegramData == nil {
		patron.TelegramData = datatypes.JSONMap{"id": in.TelegramID}
	}
	if in.Password != "" {
		if ok, msg := utils.ValidatePassword(in.Password); !ok {
			return nil, ErrInvalidInput("%s", msg)
		}
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		patron.PasswordHash = hash
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Patron{}).Where("telegram_id = ?", in.TelegramID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrInvalidInput("Patron with such Telegram id already exists")
		}
		return tx.Create(&patron).Error
	})
	if err != nil {
		return nil, err
	}
	return &patron, nil
}

// Delete removes a patron with their ratings, rankings and activity counters.
func (s *PatronService) Delete(actor *models.Patron, telegramID string) error {
	if actor != nil && actor.TelegramID == telegramID {
		return ErrInvalidInput("Cannot delete yourself")
	}
	if telegramID == s.superadminTelegramID {
		return ErrAuthorizationDenied("Superadmin cannot be deleted")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var target models.Patron
		if err := tx.Where("telegram_id = ?", telegramID).First(&target).Error; err != nil {
			if errIsNotFound(err) {
				return ErrNotFound("Patron not found")
			}
			return err
		}
		if target.IsAdmin && !IsSuperadmin(actor, s.superadminTelegramID) {
			return ErrAuthorizationDenied("Only superadmin can delete admin patrons")
		}

		for _, model := range []any{&models.PatronRateApplication{}, &models.PatronRanking{}, &models.PatronDailyStats{}} {
			if err := tx.Where("patron_id = ?", target.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&target).Error
	})
}

// Promote grants or revokes admin rights. Superadmin only.
func (s *PatronService) Promote(actor *models.Patron, telegramID string, isAdmin bool) (*models.Patron, error) {
	if !IsSuperadmin(actor, s.superadminTelegramID) {
		return nil, ErrAuthorizationDenied("Only superadmin can promote patrons")
	}
	if actor.TelegramID == telegramID {
		return nil, ErrAuthorizationDenied("Cannot change your own admin status")
	}

	patron, err := s.GetByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(patron).Update("is_admin", isAdmin).Error; err != nil {
		return nil, err
	}
	patron.IsAdmin = isAdmin
	return patron, nil
}

// ListWithActivity returns every patron with their own ratings and ranking.
func (s *PatronService) ListWithActivity() ([]PatronActivity, error) {
	var patrons []models.Patron
	if err := s.db.Order("id").Find(&patrons).Error; err != nil {
		return nil, err
	}
	var ratings []models.PatronRateApplication
	if err := s.db.Order("patron_id, application_id").Find(&ratings).Error; err != nil {
		return nil, err
	}
	var rankings []models.PatronRanking
	if err := s.db.Preload("Application").Order("patron_id, rank_position").Find(&rankings).Error; err != nil {
		return nil, err
	}

	out := make([]PatronActivity, len(patrons))
	index := make(map[int]int, len(patrons))
	for i, p := range patrons {
		index[p.ID] = i
		out[i] = PatronActivity{
			Patron:  p,
			Ratings: []models.PatronRateApplication{},
			Ranking: PatronRanking{PatronID: p.ID, Applications: []models.Application{}},
		}
	}
	for _, r := range ratings {
		if i, ok := index[r.PatronID]; ok {
			out[i].Ratings = append(out[i].Ratings, r)
		}
	}
	for _, r := range rankings {
		if i, ok := index[r.PatronID]; ok && r.Application != nil {
			out[i].Ranking.Applications = append(out[i].Ranking.Applications, *r.Application)
		}
	}
	return out, nil
}

// EnsureSeeded creates the superadmin and the default patrons when missing.
// The superadmin is always stored as an admin.
func (s *PatronService) EnsureSeeded(defaultPatrons []string) error {
	seed := func(telegramID string, isAdmin bool) error {
		var patron models.Patron
		err := s.db.Where("telegram_id = ?", telegramID).First(&patron).Error
		if err == nil {
			if isAdmin && !patron.IsAdmin {
				return s.db.Model(&patron).Update("is_admin", true).Error
			}
			return nil
		}
		if !errIsNotFound(err) {
			return err
		}
		patron = models.Patron{
			TelegramID:   telegramID,
			TelegramData: datatypes.JSONMap{"id": telegramID},
			IsAdmin:      isAdmin,
		}
		if err := s.db.Create(&patron).Error; err != nil {
			return err
		}
		slog.Info("Seeded patron", "telegram_id", telegramID, "is_admin", isAdmin)
		return nil
	}

	if s.superadminTelegramID != "" {
		if err := seed(s.superadminTelegramID, true); err != nil {
			return err
		}
	}
	for _, id := range defaultPatrons {
		id = strings.TrimSpace(id)
		if id == "" || id == s.superadminTelegramID {
			continue
		}
		if err := seed(id, false); err != nil {
			return err
		}
	}
	return nil
}
