package db

import "time"

// VotingPeriod is a window during which votes are accepted for an
// edition. A nil CompoID applies the window to every compo.
type VotingPeriod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EditionID uint      `gorm:"index;not null" json:"edition_id"`
	CompoID   *uint     `gorm:"index" json:"compo_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) CreatePeriod(period *VotingPeriod) error {
	return translateError(s.db.Create(period).Error)
}

func (s *gormStore) UpdatePeriod(period *VotingPeriod) error {
	return translateError(s.db.Save(period).Error)
}

func (s *gormStore) DeletePeriod(id uint) error {
	result := s.db.Delete(&VotingPeriod{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) PeriodByID(id uint) (*VotingPeriod, error) {
	var period VotingPeriod
	if err := s.db.First(&period, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &period, nil
}

func (s *gormStore) ListPeriods(filter PeriodFilter) ([]VotingPeriod, error) {
	query := s.db.Order("start_date DESC")
	if filter.EditionID != 0 {
		query = query.Where("edition_id = ?", filter.EditionID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var periods []VotingPeriod
	if err := query.Find(&periods).Error; err != nil {
		return nil, translateError(err)
	}
	return periods, nil
}
