package services

import (
	"patron-review-api/models"
	"patron-review-api/testutil"
	"strings"
	"testing"
	"time"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		raw     string
		want    Scope
		wantErr bool
	}{
		{"", ScopeLast, false},
		{"all", ScopeAll, false},
		{"CURRENT", ScopeCurrent, false},
		{" last ", ScopeLast, false},
		{"yesterday", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScope(tt.raw, ScopeLast)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseScope(%q) error = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseScope(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCurrentAndLastWindow(t *testing.T) {
	w1 := models.TimeWindow{ID: 1, Start: testutil.Date(2025, 1, 1, 0, 0), End: testutil.Date(2025, 1, 31, 23, 59)}
	w2 := models.TimeWindow{ID: 2, Start: testutil.Date(2025, 3, 1, 0, 0), End: testutil.Date(2025, 3, 31, 0, 0)}
	windows := []models.TimeWindow{w2, w1}

	tests := []struct {
		name        string
		now         time.Time
		wantCurrent int
		wantLast    int
	}{
		{"before everything", testutil.Date(2024, 12, 1, 0, 0), 0, 0},
		{"inside first", testutil.Date(2025, 1, 15, 0, 0), 1, 1},
		{"at start boundary", w1.Start, 1, 1},
		{"at end boundary", w1.End, 1, 1},
		{"between windows", testutil.Date(2025, 2, 1, 0, 0), 0, 1},
		{"inside second", testutil.Date(2025, 3, 2, 0, 0), 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := CurrentWindow(windows, tt.now)
			if got := idOf(current); got != tt.wantCurrent {
				t.Fatalf("current = %d, want %d", got, tt.wantCurrent)
			}
			last := LastWindow(windows, tt.now)
			if got := idOf(last); got != tt.wantLast {
				t.Fatalf("last = %d, want %d", got, tt.wantLast)
			}
		})
	}
}

func idOf(w *models.TimeWindow) int {
	if w == nil {
		return 0
	}
	return w.ID
}

func TestTimeWindowService_CreateRejectsOverlap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTimeWindowService(db)

	if _, err := svc.Create(TimeWindowInput{Title: "W1", Start: testutil.Date(2025, 1, 1, 0, 0), End: testutil.Date(2025, 1, 31, 0, 0)}); err != nil {
		t.Fatalf("create W1: %v", err)
	}

	tests := []struct {
		name  string
		in    TimeWindowInput
		match string
	}{
		{"overlapping", TimeWindowInput{Title: "W2", Start: testutil.Date(2025, 1, 20, 0, 0), End: testutil.Date(2025, 2, 10, 0, 0)}, "overlaps with existing one (W1"},
		{"touching end", TimeWindowInput{Title: "W2", Start: testutil.Date(2025, 1, 31, 0, 0), End: testutil.Date(2025, 2, 10, 0, 0)}, "overlaps"},
		{"start after end", TimeWindowInput{Title: "W2", Start: testutil.Date(2025, 3, 2, 0, 0), End: testutil.Date(2025, 3, 1, 0, 0)}, "start must be before end"},
		{"empty title", TimeWindowInput{Title: " ", Start: testutil.Date(2025, 3, 1, 0, 0), End: testutil.Date(2025, 3, 2, 0, 0)}, "title is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.in)
			if KindOf(err) != KindInvalidInput {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.match) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.match)
			}
		})
	}

	if _, err := svc.Create(TimeWindowInput{Title: "W2", Start: testutil.Date(2025, 2, 1, 0, 0), End: testutil.Date(2025, 2, 28, 0, 0)}); err != nil {
		t.Fatalf("create disjoint W2: %v", err)
	}
	windows, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(windows) != 2 || windows[0].Title != "W1" || windows[1].Title != "W2" {
		t.Fatalf("unexpected windows: %+v", windows)
	}
}

func TestTimeWindowService_UpdateExcludesItself(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTimeWindowService(db)
	w1 := testutil.CreateWindow(t, db, "W1", testutil.Date(2025, 1, 1, 0, 0), testutil.Date(2025, 1, 31, 0, 0))
	testutil.CreateWindow(t, db, "W2", testutil.Date(2025, 3, 1, 0, 0), testutil.Date(2025, 3, 31, 0, 0))

	newEnd := testutil.Date(2025, 2, 15, 0, 0)
	updated, err := svc.Update(w1.ID, TimeWindowPatch{End: &newEnd})
	if err != nil {
		t.Fatalf("extend W1: %v", err)
	}
	if !updated.End.Equal(newEnd) {
		t.Fatalf("end = %v, want %v", updated.End, newEnd)
	}

	tooFar := testutil.Date(2025, 3, 5, 0, 0)
	if _, err := svc.Update(w1.ID, TimeWindowPatch{End: &tooFar}); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected overlap error, got %v", err)
	}

	title := "Winter"
	if _, err := svc.Update(w1.ID, TimeWindowPatch{Title: &title}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := svc.Get(w1.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Winter" || !got.End.Equal(newEnd) {
		t.Fatalf("unexpected window after updates: %+v", got)
	}

	if _, err := svc.Update(999, TimeWindowPatch{Title: &title}); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTimeWindowService_Resolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTimeWindowService(db)

	if _, err := svc.Resolve(ScopeLast, testutil.Date(2025, 1, 1, 0, 0)); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected missing last window error, got %v", err)
	}
	if interval, err := svc.Resolve(ScopeAll, testutil.Date(2025, 1, 1, 0, 0)); err != nil || interval != nil {
		t.Fatalf("all scope should resolve to nil, got %v %v", interval, err)
	}

	w1 := testutil.CreateWindow(t, db, "W1", testutil.Date(2025, 1, 1, 0, 0), testutil.Date(2025, 1, 31, 0, 0))
	feb := testutil.Date(2025, 2, 1, 0, 0)

	if _, err := svc.Resolve(ScopeCurrent, feb); err == nil || !strings.Contains(err.Error(), "No current timewindow") {
		t.Fatalf("expected no current window, got %v", err)
	}
	interval, err := svc.Resolve(ScopeLast, feb)
	if err != nil {
		t.Fatalf("resolve last: %v", err)
	}
	if !interval.Start.Equal(w1.Start) || !interval.End.Equal(w1.End) {
		t.Fatalf("interval = %+v", interval)
	}
}

func TestTimeWindowService_DeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewTimeWindowService(db)
	patron := testutil.CreatePatron(t, db, "1", false)
	w1 := testutil.CreateWindow(t, db, "W1", testutil.Date(2025, 1, 1, 0, 0), testutil.Date(2025, 1, 31, 0, 0))
	w2 := testutil.CreateWindow(t, db, "W2", testutil.Date(2025, 3, 1, 0, 0), testutil.Date(2025, 3, 31, 0, 0))
	a1 := testutil.CreateApplication(t, db, w1, "a@innopolis.university", testutil.Date(2025, 1, 10, 0, 0))
	a2 := testutil.CreateApplication(t, db, w2, "b@innopolis.university", testutil.Date(2025, 3, 10, 0, 0))

	ratings := NewRatingService(db)
	positive := models.RatingPositive
	for _, id := range []int{a1.ID, a2.ID} {
		if _, err := ratings.Rate(patron.ID, id, RateInput{Rate: &positive}); err != nil {
			t.Fatalf("rate %d: %v", id, err)
		}
	}
	if err := ratings.SetRanking(patron.ID, []int{a2.ID, a1.ID}); err != nil {
		t.Fatalf("set ranking: %v", err)
	}

	if err := svc.Delete(w1.ID); err != nil {
		t.Fatalf("delete W1: %v", err)
	}

	var count int64
	db.Model(&models.Application{}).Where("id = ?", a1.ID).Count(&count)
	if count != 0 {
		t.Fatal("application of deleted window survived")
	}
	db.Model(&models.PatronRateApplication{}).Where("application_id = ?", a1.ID).Count(&count)
	if count != 0 {
		t.Fatal("rating of deleted application survived")
	}
	db.Model(&models.PatronRanking{}).Where("application_id = ?", a1.ID).Count(&count)
	if count != 0 {
		t.Fatal("ranking of deleted application survived")
	}
	db.Model(&models.PatronRanking{}).Where("application_id = ?", a2.ID).Count(&count)
	if count != 1 {
		t.Fatal("ranking of other window was removed")
	}

	if err := svc.Delete(w1.ID); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
