package db

import (
	"time"

	"gorm.io/datatypes"
)

// Audit event types.
const (
	EventVoteCast         = "vote_cast"
	EventCodesGenerated   = "codes_generated"
	EventCodeRedeemed     = "code_redeemed"
	EventAttendeeVerified = "attendee_verified"
	EventResultsPublished = "results_published"
)

// EventLog is an append-only audit trail of voting-system activity.
type EventLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	EditionID *uint          `gorm:"index" json:"edition_id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	Type      string         `gorm:"size:64;not null" json:"type"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (s *gormStore) AppendEvent(event *EventLog) error {
	return translateError(s.db.Create(event).Error)
}

func (s *gormStore) ListEvents(editionID uint, limit int) ([]EventLog, error) {
	query := s.db.Order("id DESC")
	if editionID != 0 {
		query = query.Where("edition_id = ?", editionID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var events []EventLog
	if err := query.Find(&events).Error; err != nil {
		return nil, translateError(err)
	}
	return events, nil
}
