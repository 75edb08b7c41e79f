package services

import (
	"crypto/subtle"
	"patron-review-api/config"
	"patron-review-api/models"
	"patron-review-api/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthService turns verified identities into patrons.
type AuthService struct {
	db           *gorm.DB
	verifier     *TelegramVerifier
	inviteSecret string
}

func NewAuthService(db *gorm.DB, verifier *TelegramVerifier, inviteSecret string) *AuthService {
	if db == nil {
		db = config.DB
	}
	return &AuthService{db: db, verifier: verifier, inviteSecret: inviteSecret}
}

// LoginWithTelegram verifies a widget payload. A known identity gets its
// profile data refreshed; an unknown one is registered only when invite
// matches the configured invite secret.
func (s *AuthService) LoginWithTelegram(params map[string]string, invite string) (*models.Patron, error) {
	user, ok := s.verifier.Verify(params)
	if !ok {
		return nil, ErrVerificationFailed("Telegram data verification failed")
	}
	telegramID := user["id"]
	if telegramID == "" {
		return nil, ErrVerificationFailed("No telegram data received")
	}

	data := make(datatypes.JSONMap, len(user))
	for k, v := range user {
		data[k] = v
	}

	var patron models.Patron
	err := s.db.Where("telegram_id = ?", telegramID).First(&patron).Error
	switch {
	case err == nil:
		if err := s.db.Model(&patron).Update("telegram_data", data).Error; err != nil {
			return nil, err
		}
		patron.TelegramData = data
		return &patron, nil
	case !errIsNotFound(err):
		return nil, err
	}

	if s.inviteSecret == "" || subtle.ConstantTimeCompare([]byte(invite), []byte(s.inviteSecret)) != 1 {
		return nil, ErrAuthorizationDenied("Invalid invite string")
	}
	patron = models.Patron{TelegramID: telegramID, TelegramData: data}
	if err := s.db.Create(&patron).Error; err != nil {
		return nil, err
	}
	return &patron, nil
}

// LoginWithPassword checks a patron's password. Patrons without a password
// cannot log in this way.
func (s *AuthService) LoginWithPassword(telegramID, password string) (*models.Patron, error) {
	var patron models.Patron
	if err := s.db.Where("telegram_id = ?", telegramID).First(&patron).Error; err != nil {
		if errIsNotFound(err) {
			return nil, ErrVerificationFailed("Invalid telegram id or password")
		}
		return nil, err
	}
	if !patron.HasPassword() || !utils.CheckPasswordHash(password, patron.PasswordHash) {
		return nil, ErrVerificationFailed("Invalid telegram id or password")
	}
	return &patron, nil
}
