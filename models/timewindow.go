package models

import "time"

// TimeWindow is a submission period. Stored windows never overlap.
type TimeWindow struct {
	ID    int       `gorm:"primaryKey;column:id" json:"id"`
	Title string    `gorm:"column:title;size:255;not null" json:"title"`
	Start time.Time `gorm:"column:starts_at;not null" json:"start"`
	End   time.Time `gorm:"column:ends_at;not null" json:"end"`
}

func (TimeWindow) TableName() string {
	return "timewindows"
}

// Contains reports whether t lies in [Start, End], both ends inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether [start, end] intersects the window.
func (w TimeWindow) Overlaps(start, end time.Time) bool {
	return !start.After(w.End) && !end.Before(w.Start)
}
