package services

import (
	"patron-review-api/models"
	"sort"
)

// RRFConstant is the k in 1/(k + rank + 1).
const RRFConstant = 60

// ApplicationRankingStats is one row of the aggregated ranking.
type ApplicationRankingStats struct {
	Application   models.Application `json:"application"`
	RRFScore      float64            `json:"rrf_score"`
	PositiveVotes int                `json:"positive_votes"`
	NegativeVotes int                `json:"negative_votes"`
	NeutralVotes  int                `json:"neutral_votes"`
	TotalVotes    int                `json:"total_votes"`
}

// RRFScore sums reciprocal rank contributions for zero-based ranks.
func RRFScore(ranks []int) float64 {
	var score float64
	for _, r := range ranks {
		score += 1.0 / float64(RRFConstant+r+1)
	}
	return score
}

// ComputeAggregateRanking merges patron rankings with reciprocal rank fusion
// and attaches vote counts. Rankings and ratings for applications not in apps
// are ignored. Ties keep the order of apps.
func ComputeAggregateRanking(apps []models.Application, rankings []models.PatronRanking, ratings []models.PatronRateApplication) []ApplicationRankingStats {
	index := make(map[int]int, len(apps))
	rows := make([]ApplicationRankingStats, len(apps))
	for i, a := range apps {
		index[a.ID] = i
		rows[i].Application = a
	}

	for _, r := range rankings {
		if i, ok := index[r.ApplicationID]; ok {
			rows[i].RRFScore += RRFScore([]int{r.Rank})
		}
	}

	for _, r := range ratings {
		i, ok := index[r.ApplicationID]
		if !ok || !r.Rated {
			continue
		}
		switch r.Rate {
		case models.RatingPositive:
			rows[i].PositiveVotes++
		case models.RatingNegative:
			rows[i].NegativeVotes++
		default:
			rows[i].NeutralVotes++
		}
		rows[i].TotalVotes++
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RRFScore > rows[j].RRFScore
	})
	return rows
}
