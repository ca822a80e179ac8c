package db

import (
	"time"

	"gorm.io/gorm/clause"
)

// Vote is one user's score for one production. The (user, production)
// pair is unique; re-voting updates score and comment in place.
type Vote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_votes_user_production" json:"user_id"`
	ProductionID uint      `gorm:"not null;uniqueIndex:idx_votes_user_production;index:idx_votes_production_jury" json:"production_id"`
	Score        int       `gorm:"not null" json:"score"`
	Comment      string    `gorm:"size:500;not null;default:''" json:"comment"`
	IsJuryVote   bool      `gorm:"not null;default:false;index:idx_votes_production_jury" json:"is_jury_vote"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// SaveVote inserts the vote or, when the (user, production) row already
// exists, updates only score, comment and updated_at. IsJuryVote is
// written at creation and never touched by the conflict branch.
func (s *gormStore) SaveVote(vote *Vote) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "production_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"score":      vote.Score,
			"comment":    vote.Comment,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(vote).Error
	if err != nil {
		return translateError(err)
	}
	// Reload so the caller sees the persisted row, not the insert
	// candidate (the conflict branch keeps the original id and flag).
	saved, lookupErr := s.VoteFor(vote.UserID, vote.ProductionID)
	if lookupErr != nil {
		return lookupErr
	}
	*vote = *saved
	return nil
}

func (s *gormStore) VoteFor(userID, productionID uint) (*Vote, error) {
	var vote Vote
	err := s.db.Where("user_id = ? AND production_id = ?", userID, productionID).First(&vote).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &vote, nil
}

func (s *gormStore) VotesByUser(userID uint, editionID uint) ([]Vote, error) {
	query := s.db.Where("votes.user_id = ?", userID).Order("votes.id")
	if editionID != 0 {
		query = query.
			Joins("JOIN productions ON productions.id = votes.production_id").
			Where("productions.edition_id = ?", editionID)
	}
	var votes []Vote
	if err := query.Find(&votes).Error; err != nil {
		return nil, translateError(err)
	}
	return votes, nil
}

func (s *gormStore) VotesForProduction(productionID uint) ([]Vote, error) {
	var votes []Vote
	if err := s.db.Where("production_id = ?", productionID).Order("id").Find(&votes).Error; err != nil {
		return nil, translateError(err)
	}
	return votes, nil
}

func (s *gormStore) VotesForEdition(editionID uint) ([]Vote, error) {
	var votes []Vote
	err := s.db.
		Joins("JOIN productions ON productions.id = votes.production_id").
		Where("productions.edition_id = ?", editionID).
		Order("votes.id").
		Find(&votes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return votes, nil
}
