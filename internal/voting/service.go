// Package voting implements the DPMS voting rules engine: eligibility
// gating, vote validation, attendance codes, jury progress and score
// aggregation. All persistence goes through db.Store; the engine itself
// keeps no state beyond a clock.
package voting

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/FreeMEM/DPMS/internal/db"
)

const (
	ScoreMin = 1
	ScoreMax = 10
)

type Service struct {
	store db.Store

	// Now is the clock used for every period and timestamp decision.
	// Tests override it to pin time.
	Now func() time.Time

	codeBatchMax  int
	commentMaxLen int
}

func NewService(store db.Store, codeBatchMax, commentMaxLen int) *Service {
	if codeBatchMax <= 0 {
		codeBatchMax = 1000
	}
	if commentMaxLen <= 0 {
		commentMaxLen = 500
	}
	return &Service{
		store:         store,
		Now:           func() time.Time { return time.Now().UTC() },
		codeBatchMax:  codeBatchMax,
		commentMaxLen: commentMaxLen,
	}
}

func (s *Service) Store() db.Store { return s.store }

func (s *Service) appendEvent(editionID, userID *uint, eventType string, payload datatypes.JSON) {
	// Audit writes are best-effort; losing one never fails the request.
	_ = s.store.AppendEvent(&db.EventLog{
		EditionID: editionID,
		UserID:    userID,
		Type:      eventType,
		Payload:   payload,
	})
}

// SaveConfig validates and stores an edition's voting configuration.
// In mixed mode the public and jury weights must sum to exactly 100.
func (s *Service) SaveConfig(config *db.VotingConfiguration) error {
	switch config.VotingMode {
	case db.VotingModePublic, db.VotingModeJury, db.VotingModeMixed:
	default:
		return ErrInvalidMode
	}
	switch config.AccessMode {
	case db.AccessModeOpen, db.AccessModeCode, db.AccessModeManual, db.AccessModeCheckin:
	default:
		return ErrInvalidMode
	}
	if config.PublicWeight < 0 || config.PublicWeight > 100 ||
		config.JuryWeight < 0 || config.JuryWeight > 100 {
		return ErrWeightSum
	}
	if config.VotingMode == db.VotingModeMixed && config.PublicWeight+config.JuryWeight != 100 {
		return ErrWeightSum
	}
	if _, err := s.store.EditionByID(config.EditionID); err != nil {
		return err
	}
	return s.store.SaveVotingConfig(config)
}

// PublishResults flips the results-published flag for an edition and
// stamps the publication time.
func (s *Service) PublishResults(editionID uint, publishedBy uint) (*db.VotingConfiguration, error) {
	config, err := s.store.VotingConfigByEdition(editionID)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, ErrConfigurationMissing
		}
		return nil, err
	}
	now := s.Now()
	config.ResultsPublished = true
	config.ResultsPublishedAt = &now
	if err := s.store.SaveVotingConfig(config); err != nil {
		return nil, err
	}
	s.appendEvent(&editionID, &publishedBy, db.EventResultsPublished, datatypes.JSON(`{}`))
	return config, nil
}

// VerifyAttendee records or refreshes a manual or check-in verification
// for a user. Code-based verification happens through RedeemCode.
func (s *Service) VerifyAttendee(verifiedBy, userID, editionID uint, method, notes string) (*db.AttendeeVerification, error) {
	switch method {
	case db.VerificationMethodManual, db.VerificationMethodCheckin:
	default:
		return nil, ErrInvalidMode
	}
	if _, err := s.store.EditionByID(editionID); err != nil {
		return nil, err
	}
	if _, err := s.store.UserByID(userID); err != nil {
		return nil, err
	}
	now := s.Now()
	verification := &db.AttendeeVerification{
		UserID:             userID,
		EditionID:          editionID,
		IsVerified:         true,
		VerificationMethod: method,
		VerifiedByID:       &verifiedBy,
		VerifiedAt:         &now,
		Notes:              notes,
	}
	if err := s.store.UpsertVerification(verification); err != nil {
		return nil, err
	}
	s.appendEvent(&editionID, &userID, db.EventAttendeeVerified, datatypes.JSON(
		fmt.Sprintf(`{"method":%q}`, method),
	))
	return verification, nil
}

// CanVote reports public-vote eligibility under the edition's access
// mode. Open mode bypasses the verification check entirely.
func CanVote(config *db.VotingConfiguration, verification *db.AttendeeVerification) bool {
	if config.AccessMode == db.AccessModeOpen {
		return true
	}
	return verification != nil && verification.IsVerified
}

// CanVoteInCompo reports whether a jury member may vote in a compo. An
// empty assignment set means the member is unrestricted.
func CanVoteInCompo(member *db.JuryMember, compoID uint) bool {
	if len(member.Compos) == 0 {
		return true
	}
	for _, compo := range member.Compos {
		if compo.ID == compoID {
			return true
		}
	}
	return false
}

// Progress is a jury member's voting-progress snapshot.
type Progress struct {
	TotalProductions   int     `json:"total_productions"`
	VotesCast          int     `json:"votes_cast"`
	Pending            int     `json:"pending"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// JuryProgress computes how far a jury member has got through the
// productions they are expected to score.
func (s *Service) JuryProgress(memberID uint) (*Progress, error) {
	member, err := s.store.JuryMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	productions, err := s.store.ListProductions(db.ProductionFilter{EditionID: member.EditionID})
	if err != nil {
		return nil, err
	}
	eligible := make(map[uint]struct{})
	for _, production := range productions {
		if CanVoteInCompo(member, production.CompoID) {
			eligible[production.ID] = struct{}{}
		}
	}
	votes, err := s.store.VotesByUser(member.UserID, member.EditionID)
	if err != nil {
		return nil, err
	}
	cast := 0
	for _, vote := range votes {
		if !vote.IsJuryVote {
			continue
		}
		if _, ok := eligible[vote.ProductionID]; ok {
			cast++
		}
	}
	progress := &Progress{
		TotalProductions: len(eligible),
		VotesCast:        cast,
		Pending:          len(eligible) - cast,
	}
	if progress.TotalProductions > 0 {
		progress.ProgressPercentage = float64(cast) / float64(progress.TotalProductions) * 100
	}
	return progress, nil
}

// CastVote validates and records a vote by userID on a production.
//
// Whether the vote counts as a jury vote is resolved here, not taken
// from the caller: a user enrolled as jury for the production's edition
// always casts jury votes. A re-vote updates the existing row's score
// and comment and keeps its original jury flag.
func (s *Service) CastVote(userID, productionID uint, score int, comment string) (*db.Vote, error) {
	if score < ScoreMin || score > ScoreMax {
		return nil, ErrScoreOutOfRange
	}
	if len(comment) > s.commentMaxLen {
		return nil, ErrCommentTooLong
	}
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

	now := s.Now()
	open, err := s.votingOpenFor(production.EditionID, production.CompoID, now)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrVotingClosed
	}

	member, err := s.store.JuryMemberFor(userID, production.EditionID)
	if err != nil && err != db.ErrNotFound {
		return nil, err
	}

	// The jury flag is fixed at creation; on update the existing row
	// decides, so a member removed from the jury mid-vote cannot turn a
	// jury vote into a public one.
	isJuryVote := member != nil
	existing, err := s.store.VoteFor(userID, productionID)
	if err != nil && err != db.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		isJuryVote = existing.IsJuryVote
	}

	if config.VotingMode == db.VotingModeJury && !isJuryVote {
		return nil, ErrPublicVotingDisabled
	}
	if isJuryVote {
		if member == nil {
			return nil, ErrNotJuryMember
		}
		if !CanVoteInCompo(member, production.CompoID) {
			return nil, ErrCompoNotAssigned
		}
	}
	if !isJuryVote && config.AccessMode != db.AccessModeOpen {
		verification, err := s.store.VerificationFor(userID, production.EditionID)
		if err != nil && err != db.ErrNotFound {
			return nil, err
		}
		if !CanVote(config, verification) {
			return nil, ErrNotVerifiedAttendee
		}
	}

	vote := &db.Vote{
		UserID:       userID,
		ProductionID: productionID,
		Score:        score,
		Comment:      comment,
		IsJuryVote:   isJuryVote,
	}
	if err := s.store.SaveVote(vote); err != nil {
		return nil, err
	}
	s.appendEvent(&production.EditionID, &userID, db.EventVoteCast, datatypes.JSON(
		fmt.Sprintf(`{"production_id":%d,"jury":%t}`, productionID, isJuryVote),
	))
	return vote, nil
}
