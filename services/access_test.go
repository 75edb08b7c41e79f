package services

import (
	"patron-review-api/models"
	"testing"
)

func TestAuthorize(t *testing.T) {
	const superID = "1"
	super := &models.Patron{ID: 1, TelegramID: superID}
	admin := &models.Patron{ID: 2, TelegramID: "2", IsAdmin: true}
	patron := &models.Patron{ID: 3, TelegramID: "3"}

	tests := []struct {
		name       string
		patron     *models.Patron
		capability Capability
		wantErr    bool
		want       ErrorKind
	}{
		{"anonymous patron route", nil, CapPatron, true, KindAuthenticationRequired},
		{"anonymous admin route", nil, CapAdmin, true, KindAuthenticationRequired},
		{"patron on patron route", patron, CapPatron, false, 0},
		{"patron on admin route", patron, CapAdmin, true, KindAuthorizationDenied},
		{"admin on admin route", admin, CapAdmin, false, 0},
		{"admin on superadmin route", admin, CapSuperadmin, true, KindAuthorizationDenied},
		{"superadmin without flag is admin", super, CapAdmin, false, 0},
		{"superadmin route", super, CapSuperadmin, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.patron, tt.capability, superID)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Authorize() = %v, want nil", err)
				}
				return
			}
			if KindOf(err) != tt.want {
				t.Fatalf("Authorize() = %v, want kind %v", err, tt.want)
			}
		})
	}
}

func TestIsSuperadmin_EmptyConfig(t *testing.T) {
	if IsSuperadmin(&models.Patron{TelegramID: ""}, "") {
		t.Fatal("empty superadmin id must not match")
	}
}
