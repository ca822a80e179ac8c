package voting

import (
	"time"

	"github.com/FreeMEM/DPMS/internal/db"
)

// CompoResults is the ranked listing for one compo.
type CompoResults struct {
	CompoID   uint               `json:"compo_id"`
	CompoName string             `json:"compo_name"`
	Entries   []RankedProduction `json:"entries"`
}

// Results is the full results payload for an edition.
type Results struct {
	EditionID          uint           `json:"edition_id"`
	EditionTitle       string         `json:"edition_title"`
	VotingMode         string         `json:"voting_mode"`
	ResultsPublishedAt *time.Time     `json:"results_published_at"`
	ShowPartialResults bool           `json:"show_partial_results"`
	ByCompo            []CompoResults `json:"results_by_compo"`
}

// EditionResults ranks every production of an edition per compo. Unless
// includeUnpublished is set (admin callers), unpublished results are
// refused with ErrResultsNotPublished.
func (s *Service) EditionResults(editionID uint, includeUnpublished bool) (*Results, error) {
	edition, err := s.store.EditionByID(editionID)
	if err != nil {
		return nil, err
	}
	config, err := s.store.VotingConfigByEdition(editionID)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, ErrConfigurationMissing
		}
		return nil, err
	}
	if !includeUnpublished && !config.ResultsPublished {
		return nil, ErrResultsNotPublished
	}

	productions, err := s.store.ListProductions(db.ProductionFilter{EditionID: editionID})
	if err != nil {
		return nil, err
	}
	votes, err := s.store.VotesForEdition(editionID)
	if err != nil {
		return nil, err
	}
	votesByProduction := make(map[uint][]db.Vote)
	for _, vote := range votes {
		votesByProduction[vote.ProductionID] = append(votesByProduction[vote.ProductionID], vote)
	}

	compos, err := s.store.EditionCompos(editionID)
	if err != nil {
		return nil, err
	}
	compoNames := make(map[uint]string, len(compos))
	for _, compo := range compos {
		compoNames[compo.ID] = compo.Name
	}

	byCompo := make(map[uint][]RankedProduction)
	for _, production := range productions {
		tally := Summarize(votesByProduction[production.ID])
		entry := RankedProduction{
			ProductionID: production.ID,
			Title:        production.Title,
			Authors:      production.Authors,
			CompoID:      production.CompoID,
			CompoName:    compoNames[production.CompoID],
			TotalVotes:   tally.Total(),
			PublicVotes:  tally.PublicCount,
			JuryVotes:    tally.JuryCount,
			PublicAvg:    round2(tally.PublicAvg),
			JuryAvg:      round2(tally.JuryAvg),
			FinalScore:   round2(FinalScore(config, tally)),
		}
		byCompo[production.CompoID] = append(byCompo[production.CompoID], entry)
	}

	results := &Results{
		EditionID:          edition.ID,
		EditionTitle:       edition.Title,
		VotingMode:         config.VotingMode,
		ResultsPublishedAt: config.ResultsPublishedAt,
		ShowPartialResults: config.ShowPartialResults,
	}
	for _, compo := range compos {
		entries := byCompo[compo.ID]
		if len(entries) == 0 {
			continue
		}
		Rank(entries)
		results.ByCompo = append(results.ByCompo, CompoResults{
			CompoID:   compo.ID,
			CompoName: compo.Name,
			Entries:   entries,
		})
		delete(byCompo, compo.ID)
	}
	// Productions whose compo is not scheduled through the edition still
	// rank within their own compo group.
	for compoID, entries := range byCompo {
		Rank(entries)
		results.ByCompo = append(results.ByCompo, CompoResults{
			CompoID:   compoID,
			CompoName: compoNames[compoID],
			Entries:   entries,
		})
	}
	return results, nil
}

// ProductionStats is the per-production vote summary.
type ProductionStats struct {
	ProductionID uint    `json:"production_id"`
	TotalVotes   int     `json:"total_votes"`
	PublicVotes  int     `json:"public_votes"`
	JuryVotes    int     `json:"jury_votes"`
	PublicAvg    float64 `json:"public_avg"`
	JuryAvg      float64 `json:"jury_avg"`
	FinalScore   float64 `json:"final_score"`
}

// StatsForProduction summarizes the votes on one production, gated by
// the publication flag for non-admin callers.
func (s *Service) StatsForProduction(productionID uint, includeUnpublished bool) (*ProductionStats, error) {
	production, err := s.store.ProductionByID(productionID)
	if err != nil {
		return nil, err
	}
	config, err := s.store.VotingConfigByEdition(production.EditionID)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, ErrConfigurationMissing
		}
		return nil, err
	}
	if !includeUnpublished && !config.ResultsPublished {
		return nil, ErrResultsNotPublished
	}
	votes, err := s.store.VotesForProduction(productionID)
	if err != nil {
		return nil, err
	}
	tally := Summarize(votes)
	return &ProductionStats{
		ProductionID: productionID,
		TotalVotes:   tally.Total(),
		PublicVotes:  tally.PublicCount,
		JuryVotes:    tally.JuryCount,
		PublicAvg:    round2(tally.PublicAvg),
		JuryAvg:      round2(tally.JuryAvg),
		FinalScore:   round2(FinalScore(config, tally)),
	}, nil
}

// EditionStats is the participation overview for an edition.
type EditionStats struct {
	TotalVotes        int            `json:"total_votes"`
	PublicVotes       int            `json:"public_votes"`
	JuryVotes         int            `json:"jury_votes"`
	TotalVoters       int            `json:"total_voters"`
	VotesByCompo      map[string]int `json:"votes_by_compo"`
	VotesByScore      map[int]int    `json:"votes_by_score"`
	EligibleVoters    int            `json:"eligible_voters"`
	ParticipationRate float64        `json:"participation_rate"`
}

// StatsForEdition aggregates voting activity across an edition.
func (s *Service) StatsForEdition(editionID uint) (*EditionStats, error) {
	if _, err := s.store.EditionByID(editionID); err != nil {
		return nil, err
	}
	votes, err := s.store.VotesForEdition(editionID)
	if err != nil {
		return nil, err
	}
	productions, err := s.store.ListProductions(db.ProductionFilter{EditionID: editionID})
	if err != nil {
		return nil, err
	}
	compos, err := s.store.EditionCompos(editionID)
	if err != nil {
		return nil, err
	}
	compoNames := make(map[uint]string, len(compos))
	for _, compo := range compos {
		compoNames[compo.ID] = compo.Name
	}
	compoByProduction := make(map[uint]uint, len(productions))
	for _, production := range productions {
		compoByProduction[production.ID] = production.CompoID
	}

	stats := &EditionStats{
		VotesByCompo: make(map[string]int),
		VotesByScore: make(map[int]int),
	}
	voters := make(map[uint]struct{})
	for _, vote := range votes {
		stats.TotalVotes++
		if vote.IsJuryVote {
			stats.JuryVotes++
		} else {
			stats.PublicVotes++
		}
		voters[vote.UserID] = struct{}{}
		stats.VotesByScore[vote.Score]++
		if name, ok := compoNames[compoByProduction[vote.ProductionID]]; ok {
			stats.VotesByCompo[name]++
		}
	}
	stats.TotalVoters = len(voters)

	verified := true
	verifications, err := s.store.ListVerifications(editionID, &verified)
	if err != nil {
		return nil, err
	}
	stats.EligibleVoters = len(verifications)
	if stats.EligibleVoters > 0 {
		stats.ParticipationRate = round2(float64(stats.TotalVoters) / float64(stats.EligibleVoters) * 100)
	}
	return stats, nil
}

// VerificationStats summarizes attendee verification for an edition.
type VerificationStats struct {
	Total    int            `json:"total_verifications"`
	Verified int            `json:"verified"`
	Pending  int            `json:"pending"`
	ByMethod map[string]int `json:"by_method"`
}

func (s *Service) StatsForVerifications(editionID uint) (*VerificationStats, error) {
	verifications, err := s.store.ListVerifications(editionID, nil)
	if err != nil {
		return nil, err
	}
	stats := &VerificationStats{ByMethod: make(map[string]int)}
	for _, verification := range verifications {
		stats.Total++
		if verification.IsVerified {
			stats.Verified++
		} else {
			stats.Pending++
		}
		stats.ByMethod[verification.VerificationMethod]++
	}
	return stats, nil
}
