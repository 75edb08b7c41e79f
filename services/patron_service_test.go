package services

import (
	"patron-review-api/models"
	"patron-review-api/testutil"
	"testing"
)

const testSuperadmin = "1000"

func TestPatronService_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	super := testutil.CreatePatron(t, db, testSuperadmin, true)
	admin := testutil.CreatePatron(t, db, "2000", true)
	svc := NewPatronService(db, testSuperadmin)

	if _, err := svc.Add(&admin, AddPatronInput{TelegramID: "3000", IsAdmin: true}); KindOf(err) != KindAuthorizationDenied {
		t.Fatalf("admin creating admin: got %v", err)
	}
	created, err := svc.Add(&super, AddPatronInput{TelegramID: "3000", IsAdmin: true, Password: "long-enough"})
	if err != nil {
		t.Fatalf("superadmin creating admin: %v", err)
	}
	if !created.IsAdmin || !created.HasPassword() || created.PasswordHash == "long-enough" {
		t.Fatalf("unexpected patron: %+v", created)
	}
	if _, err := svc.Add(&admin, AddPatronInput{TelegramID: "3000"}); KindOf(err) != KindInvalidInput {
		t.Fatalf("duplicate telegram id: got %v", err)
	}
	if _, err := svc.Add(&admin, AddPatronInput{TelegramID: "4000", Password: "short"}); KindOf(err) != KindInvalidInput {
		t.Fatalf("short password: got %v", err)
	}
	plain, err := svc.Add(&admin, AddPatronInput{TelegramID: "4000"})
	if err != nil || plain.IsAdmin {
		t.Fatalf("admin creating patron: %+v %v", plain, err)
	}
}

func TestPatronService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	super := testutil.CreatePatron(t, db, testSuperadmin, true)
	admin := testutil.CreatePatron(t, db, "2000", true)
	otherAdmin := testutil.CreatePatron(t, db, "2001", true)
	reviewer := testutil.CreatePatron(t, db, "3000", false)
	w := testutil.CreateWindow(t, db, "W1", testutil.Date(2025, 1, 1, 0, 0), testutil.Date(2025, 1, 31, 0, 0))
	app := testutil.CreateApplication(t, db, w, "a@innopolis.university", testutil.Date(2025, 1, 2, 0, 0))

	ratings := NewRatingService(db)
	ratings.Rate(reviewer.ID, app.ID, RateInput{})
	ratings.SetRanking(reviewer.ID, []int{app.ID})

	svc := NewPatronService(db, testSuperadmin)
	tests := []struct {
		name   string
		actor  *models.Patron
		target string
		kind   ErrorKind
	}{
		{"self", &admin, "2000", KindInvalidInput},
		{"superadmin", &admin, testSuperadmin, KindAuthorizationDenied},
		{"unknown", &admin, "404", KindNotFound},
		{"admin by admin", &admin, "2001", KindAuthorizationDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Delete(tt.actor, tt.target); KindOf(err) != tt.kind {
				t.Fatalf("Delete(%s) = %v, want %v", tt.target, err, tt.kind)
			}
		})
	}

	if err := svc.Delete(&admin, "3000"); err != nil {
		t.Fatalf("delete reviewer: %v", err)
	}
	for _, model := range []any{&models.PatronRateApplication{}, &models.PatronRanking{}, &models.PatronDailyStats{}} {
		var count int64
		db.Model(model).Where("patron_id = ?", reviewer.ID).Count(&count)
		if count != 0 {
			t.Fatalf("%T rows survived patron delete", model)
		}
	}
	if err := svc.Delete(&super, otherAdmin.TelegramID); err != nil {
		t.Fatalf("superadmin deleting admin: %v", err)
	}
}

func TestPatronService_Promote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	super := testutil.CreatePatron(t, db, testSuperadmin, true)
	admin := testutil.CreatePatron(t, db, "2000", true)
	testutil.CreatePatron(t, db, "3000", false)
	svc := NewPatronService(db, testSuperadmin)

	if _, err := svc.Promote(&admin, "3000", true); KindOf(err) != KindAuthorizationDenied {
		t.Fatalf("admin promoting: got %v", err)
	}
	if _, err := svc.Promote(&super, testSuperadmin, false); KindOf(err) != KindAuthorizationDenied {
		t.Fatalf("self demotion: got %v", err)
	}
	if _, err := svc.Promote(&super, "404", true); KindOf(err) != KindNotFound {
		t.Fatalf("unknown patron: got %v", err)
	}
	promoted, err := svc.Promote(&super, "3000", true)
	if err != nil || !promoted.IsAdmin {
		t.Fatalf("promote: %+v %v", promoted, err)
	}
	reloaded, _ := svc.GetByTelegramID("3000")
	if !reloaded.IsAdmin {
		t.Fatal("promotion not persisted")
	}
}

func TestPatronService_ListWithActivityUsesOwnRanking(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p1 := testutil.CreatePatron(t, db, "1", true)
	p2 := testutil.CreatePatron(t, db, "2", false)
	w := testutil.CreateWindow(t, db, "W1", testutil.Date(2025, 1, 1, 0, 0), testutil.Date(2025, 1, 31, 0, 0))
	a := testutil.CreateApplication(t, db, w, "a@innopolis.university", testutil.Date(2025, 1, 2, 0, 0))
	b := testutil.CreateApplication(t, db, w, "b@innopolis.university", testutil.Date(2025, 1, 3, 0, 0))

	ratings := NewRatingService(db)
	ratings.SetRanking(p1.ID, []int{a.ID})
	ratings.SetRanking(p2.ID, []int{b.ID, a.ID})
	ratings.Rate(p2.ID, b.ID, RateInput{})

	list, err := NewPatronService(db, "").ListWithActivity()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 patrons, got %d", len(list))
	}
	second := list[1]
	if second.Patron.ID != p2.ID || second.Ranking.PatronID != p2.ID {
		t.Fatalf("unexpected entry: %+v", second)
	}
	if len(second.Ranking.Applications) != 2 || second.Ranking.Applications[0].ID != b.ID {
		t.Fatalf("patron 2 ranking = %+v", second.Ranking.Applications)
	}
	if len(second.Ratings) != 1 || len(list[0].Ratings) != 0 {
		t.Fatalf("ratings not grouped per patron: %+v", list)
	}
}

func TestPatronService_EnsureSeeded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPatronService(db, testSuperadmin)

	for i := 0; i < 2; i++ {
		if err := svc.EnsureSeeded([]string{"11", " 12 ", testSuperadmin, ""}); err != nil {
			t.Fatalf("seed #%d: %v", i+1, err)
		}
	}

	var count int64
	db.Model(&models.Patron{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 patrons, got %d", count)
	}
	super, err := svc.GetByTelegramID(testSuperadmin)
	if err != nil || !super.IsAdmin {
		t.Fatalf("superadmin = %+v, %v", super, err)
	}
	if p, err := svc.GetByTelegramID("12"); err != nil || p.IsAdmin {
		t.Fatalf("default patron = %+v, %v", p, err)
	}
}
