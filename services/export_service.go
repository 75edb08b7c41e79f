package services

import (
	"bytes"
	"fmt"
	"patron-review-api/config"
	"patron-review-api/models"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	rankingSheet  = "Applications Ranking"
	rankingsSheet = "Rankings"
)

// ReportService builds the aggregated ranking and its spreadsheet export.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	if db == nil {
		db = config.DB
	}
	return &ReportService{db: db}
}

// AggregateRanking fuses every patron's ranking of the applications
// submitted inside interval.
func (s *ReportService) AggregateRanking(interval *Interval) ([]ApplicationRankingStats, error) {
	var all []models.Application
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}
	apps := FilterApplications(all, interval)

	ids := make([]int, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}

	var rankings []models.PatronRanking
	var ratings []models.PatronRateApplication
	if len(ids) > 0 {
		if err := s.db.Where("application_id IN ?", ids).Find(&rankings).Error; err != nil {
			return nil, err
		}
		if err := s.db.Where("application_id IN ?", ids).Find(&ratings).Error; err != nil {
			return nil, err
		}
	}
	return ComputeAggregateRanking(apps, rankings, ratings), nil
}

// ExportFilename is the attachment name for an export produced at now.
func ExportFilename(now time.Time) string {
	return now.UTC().Format("applications_ranking_2006_01_02__15_04_05") + ".xlsx"
}

// Export writes the aggregated ranking and each patron's ranking to an xlsx
// workbook.
func (s *ReportService) Export(interval *Interval, now time.Time) (*bytes.Buffer, string, error) {
	stats, err := s.AggregateRanking(interval)
	if err != nil {
		return nil, "", err
	}

	var patrons []models.Patron
	if err := s.db.Order("id").Find(&patrons).Error; err != nil {
		return nil, "", err
	}
	var rankings []models.PatronRanking
	if err := s.db.Preload("Application").Order("patron_id, rank_position").Find(&rankings).Error; err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return nil, "", err
	}
	if err := writeRankingSheet(f, stats); err != nil {
		return nil, "", err
	}
	if _, err := f.NewSheet(rankingsSheet); err != nil {
		return nil, "", err
	}
	if err := writeRankingsSheet(f, patrons, rankings, interval); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	return buf, ExportFilename(now), nil
}

func writeRankingSheet(f *excelize.File, stats []ApplicationRankingStats) error {
	header := []any{"ID", "Email", "Full Name", "Submitted At", "RRF Score",
		"Positive Votes", "Negative Votes", "Neutral Votes", "Total Votes"}
	for _, slot := range DocumentSlots {
		header = append(header, "Has "+slot.Label)
	}
	if err := f.SetSheetRow(rankingSheet, "A1", &header); err != nil {
		return err
	}

	for i, st := range stats {
		a := st.Application
		row := []any{a.ID, a.Email, a.FullName, a.SubmittedAt.UTC().Format(time.RFC3339), st.RRFScore,
			st.PositiveVotes, st.NegativeVotes, st.NeutralVotes, st.TotalVotes}
		for _, slot := range DocumentSlots {
			row = append(row, slot.Stored(a) != "")
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(rankingSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeRankingsSheet(f *excelize.File, patrons []models.Patron, rankings []models.PatronRanking, interval *Interval) error {
	byPatron := make(map[int][]models.PatronRanking)
	for _, r := range rankings {
		if r.Application == nil || !interval.Contains(r.Application.SubmittedAt) {
			continue
		}
		byPatron[r.PatronID] = append(byPatron[r.PatronID], r)
	}

	longest := 0
	for _, ranked := range byPatron {
		longest = max(longest, len(ranked))
	}
	header := []any{"Patron"}
	for place := 1; place <= longest; place++ {
		header = append(header, place)
	}
	if err := f.SetSheetRow(rankingsSheet, "A1", &header); err != nil {
		return err
	}

	for i, p := range patrons {
		ranked := byPatron[p.ID]
		sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Rank < ranked[b].Rank })

		row := []any{p.DisplayName()}
		for _, r := range ranked {
			row = append(row, r.Application.Email)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(rankingsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
