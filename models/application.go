package models

import "time"

// Application is one applicant's submission. Document fields hold paths
// relative to the files directory, or nil when the document was not uploaded.
type Application struct {
	ID                   int       `gorm:"primaryKey;column:id" json:"id"`
	SubmittedAt          time.Time `gorm:"column:submitted_at;not null" json:"submitted_at"`
	SessionID            string    `gorm:"column:session_id;size:64;index;not null" json:"session_id"`
	Email                string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	FullName             string    `gorm:"column:full_name;size:255;not null" json:"full_name"`
	CV                   *string   `gorm:"column:cv" json:"cv"`
	Transcript           *string   `gorm:"column:transcript" json:"transcript"`
	MotivationalLetter   *string   `gorm:"column:motivational_letter" json:"motivational_letter"`
	RecommendationLetter *string   `gorm:"column:recommendation_letter" json:"recommendation_letter"`
	AlmostAStudent       *string   `gorm:"column:almost_a_student" json:"almost_a_student"`
	TimeWindowID         int       `gorm:"column:timewindow_id;index;not null" json:"timewindow_id"`

	// Relations
	TimeWindow *TimeWindow `gorm:"foreignKey:TimeWindowID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}
