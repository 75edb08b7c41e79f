package services

import "patron-review-api/models"

// Capability is what a route requires of the authenticated patron.
type Capability int

const (
	CapPatron Capability = iota
	CapAdmin
	CapSuperadmin
)

func (c Capability) String() string {
	switch c {
	case CapAdmin:
		return "admin"
	case CapSuperadmin:
		return "superadmin"
	default:
		return "patron"
	}
}

// IsSuperadmin reports whether p is the configured superadmin identity.
func IsSuperadmin(p *models.Patron, superadminTelegramID string) bool {
	return p != nil && superadminTelegramID != "" && p.TelegramID == superadminTelegramID
}

// IsAdmin reports whether p holds admin rights. The superadmin always does.
func IsAdmin(p *models.Patron, superadminTelegramID string) bool {
	return p != nil && (p.IsAdmin || IsSuperadmin(p, superadminTelegramID))
}

// Authorize checks that p may perform an operation requiring capability.
func Authorize(p *models.Patron, capability Capability, superadminTelegramID string) error {
	if p == nil {
		return ErrAuthenticationRequired("Only patrons can access this endpoint")
	}
	switch capability {
	case CapPatron:
		return nil
	case CapAdmin:
		if !IsAdmin(p, superadminTelegramID) {
			return ErrAuthorizationDenied("Only admins can access this endpoint")
		}
		return nil
	case CapSuperadmin:
		if !IsSuperadmin(p, superadminTelegramID) {
			return ErrAuthorizationDenied("Only superadmin can access this endpoint")
		}
		return nil
	default:
		return ErrAuthorizationDenied("Unknown capability")
	}
}
