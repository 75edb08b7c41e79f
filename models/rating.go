package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rating is a reviewer's judgment of one application.
type Rating int

const (
	RatingNegative Rating = -1
	RatingNeutral  Rating = 0
	RatingPositive Rating = 1
)

func (r Rating) Valid() bool {
	return r == RatingNegative || r == RatingNeutral || r == RatingPositive
}

// Docs carries per-document comments and seen flags.
type Docs struct {
	CVComments                   string `json:"cv_comments"`
	CVSeen                       bool   `json:"cv_seen"`
	MotivationalLetterComments   string `json:"motivational_letter_comments"`
	MotivationalLetterSeen       bool   `json:"motivational_letter_seen"`
	RecommendationLetterComments string `json:"recommendation_letter_comments"`
	RecommendationLetterSeen     bool   `json:"recommendation_letter_seen"`
	TranscriptComments           string `json:"transcript_comments"`
	TranscriptSeen               bool   `json:"transcript_seen"`
	AlmostAStudentComments       string `json:"almost_a_student_comments"`
	AlmostAStudentSeen           bool   `json:"almost_a_student_seen"`
}

// PatronRateApplication is the single rating row of a (patron, application)
// pair. Rated is false when the patron only left comments or doc annotations;
// Rate is meaningful only when Rated is true.
type PatronRateApplication struct {
	PatronID      int                      `gorm:"primaryKey;autoIncrement:false;column:patron_id" json:"patron_id"`
	ApplicationID int                      `gorm:"primaryKey;autoIncrement:false;column:application_id" json:"application_id"`
	Docs          datatypes.JSONType[Docs] `gorm:"column:docs" json:"docs"`
	Rate          Rating                   `gorm:"column:rate;default:0;not null" json:"rate"`
	Rated         bool                     `gorm:"column:rated;default:false;not null" json:"rated"`
	Comment       string                   `gorm:"column:comment;type:text" json:"comment"`
	UpdatedAt     time.Time                `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Patron      *Patron      `gorm:"foreignKey:PatronID;constraint:OnDelete:CASCADE" json:"-"`
	Application *Application `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PatronRateApplication) TableName() string {
	return "patron_x_application"
}

// PatronRanking is one position in a patron's ordered preference list.
// A patron's ranks are contiguous from 0.
type PatronRanking struct {
	PatronID      int       `gorm:"primaryKey;autoIncrement:false;column:patron_id" json:"patron_id"`
	ApplicationID int       `gorm:"primaryKey;autoIncrement:false;column:application_id" json:"application_id"`
	Rank          int       `gorm:"column:rank_position;not null" json:"rank"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Patron      *Patron      `gorm:"foreignKey:PatronID;constraint:OnDelete:CASCADE" json:"-"`
	Application *Application `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PatronRanking) TableName() string {
	return "patron_ranking"
}
