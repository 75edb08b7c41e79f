package models

// DayLayout is the format of PatronDailyStats.Day (UTC calendar day).
const DayLayout = "2006-01-02"

// PatronDailyStats counts a patron's rating and ranking actions per day.
// Rows are created lazily on the first action of the day.
type PatronDailyStats struct {
	Day          string `gorm:"primaryKey;column:day;size:10" json:"date"`
	PatronID     int    `gorm:"primaryKey;autoIncrement:false;column:patron_id" json:"patron_id"`
	RatingCount  int    `gorm:"column:rating_count;default:0;not null" json:"rating_count"`
	RankingCount int    `gorm:"column:ranking_count;default:0;not null" json:"ranking_count"`

	// Relations
	Patron *Patron `gorm:"foreignKey:PatronID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PatronDailyStats) TableName() string {
	return "patron_daily_stats"
}
