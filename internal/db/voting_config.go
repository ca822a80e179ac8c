package db

import "time"

// Voting modes.
const (
	VotingModePublic = "public"
	VotingModeJury   = "jury"
	VotingModeMixed  = "mixed"
)

// Access modes controlling who may cast public votes.
const (
	AccessModeOpen    = "open"
	AccessModeCode    = "code"
	AccessModeManual  = "manual"
	AccessModeCheckin = "checkin"
)

// VotingConfiguration is the per-edition voting policy. Exactly one row
// exists per edition.
type VotingConfiguration struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	EditionID          uint       `gorm:"uniqueIndex;not null" json:"edition_id"`
	VotingMode         string     `gorm:"size:10;not null;default:public" json:"voting_mode"`
	PublicWeight       int        `gorm:"not null;default:100" json:"public_weight"`
	JuryWeight         int        `gorm:"not null;default:0" json:"jury_weight"`
	AccessMode         string     `gorm:"size:10;not null;default:open" json:"access_mode"`
	ResultsPublished   bool       `gorm:"not null;default:false" json:"results_published"`
	ResultsPublishedAt *time.Time `json:"results_published_at"`
	ShowPartialResults bool       `gorm:"not null;default:false" json:"show_partial_results"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) SaveVotingConfig(config *VotingConfiguration) error {
	return translateError(s.db.Save(config).Error)
}

func (s *gormStore) VotingConfigByEdition(editionID uint) (*VotingConfiguration, error) {
	var config VotingConfiguration
	if err := s.db.Where("edition_id = ?", editionID).First(&config).Error; err != nil {
		return nil, translateError(err)
	}
	return &config, nil
}
