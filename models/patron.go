package models

import (
	"fmt"

	"gorm.io/datatypes"
)

// Patron is a registered reviewer account. TelegramData holds the profile
// fields returned by the login widget as-is.
type Patron struct {
	ID           int               `gorm:"primaryKey;column:id" json:"id"`
	TelegramID   string            `gorm:"column:telegram_id;size:64;uniqueIndex;not null" json:"telegram_id"`
	TelegramData datatypes.JSONMap `gorm:"column:telegram_data" json:"telegram_data"`
	IsAdmin      bool              `gorm:"column:is_admin;default:false;not null" json:"is_admin"`
	PasswordHash string            `gorm:"column:password_hash;size:255" json:"-"`
}

func (Patron) TableName() string {
	return "patron"
}

// DisplayName returns the Telegram username when known, otherwise "id: N".
func (p Patron) DisplayName() string {
	if username, ok := p.TelegramData["username"].(string); ok && username != "" {
		return username
	}
	return fmt.Sprintf("id: %d", p.ID)
}

// HasPassword reports whether password login is enabled for the patron.
func (p Patron) HasPassword() bool {
	return p.PasswordHash != ""
}
