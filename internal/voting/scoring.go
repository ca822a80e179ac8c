package voting

import (
	"math"
	"sort"

	"github.com/FreeMEM/DPMS/internal/db"
)

// Tally summarizes the votes cast on a single production.
type Tally struct {
	PublicCount int
	JuryCount   int
	PublicAvg   float64
	JuryAvg     float64
}

func (t Tally) Total() int { return t.PublicCount + t.JuryCount }

// Summarize splits votes into public and jury pools and averages each.
// An empty pool averages to 0, never NaN.
func Summarize(votes []db.Vote) Tally {
	var tally Tally
	var publicSum, jurySum int
	for _, vote := range votes {
		if vote.IsJuryVote {
			tally.JuryCount++
			jurySum += vote.Score
		} else {
			tally.PublicCount++
			publicSum += vote.Score
		}
	}
	if tally.PublicCount > 0 {
		tally.PublicAvg = float64(publicSum) / float64(tally.PublicCount)
	}
	if tally.JuryCount > 0 {
		tally.JuryAvg = float64(jurySum) / float64(tally.JuryCount)
	}
	return tally
}

// FinalScore applies the edition's voting mode to a tally. In mixed mode
// the public and jury averages are blended by their configured weights.
func FinalScore(config *db.VotingConfiguration, tally Tally) float64 {
	switch config.VotingMode {
	case db.VotingModeJury:
		return tally.JuryAvg
	case db.VotingModeMixed:
		return tally.PublicAvg*float64(config.PublicWeight)/100 +
			tally.JuryAvg*float64(config.JuryWeight)/100
	default:
		return tally.PublicAvg
	}
}

// RankedProduction is one row of a results listing.
type RankedProduction struct {
	ProductionID uint    `json:"production_id"`
	Title        string  `json:"title"`
	Authors      string  `json:"authors"`
	CompoID      uint    `json:"compo_id"`
	CompoName    string  `json:"compo_name"`
	TotalVotes   int     `json:"total_votes"`
	PublicVotes  int     `json:"public_votes"`
	JuryVotes    int     `json:"jury_votes"`
	PublicAvg    float64 `json:"public_avg"`
	JuryAvg      float64 `json:"jury_avg"`
	FinalScore   float64 `json:"final_score"`
	Rank         int     `json:"rank"`
}

// Rank orders entries by descending final score and assigns ranks 1..N.
// Equal scores are broken by ascending production id so the order is
// deterministic across runs.
func Rank(entries []RankedProduction) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		return entries[i].ProductionID < entries[j].ProductionID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
