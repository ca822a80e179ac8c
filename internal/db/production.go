package db

import "time"

type Production struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Authors      string    `gorm:"size:255;not null" json:"authors"`
	Description  string    `gorm:"type:text;not null;default:''" json:"description"`
	EditionID    uint      `gorm:"index;not null" json:"edition_id"`
	CompoID      uint      `gorm:"index;not null" json:"compo_id"`
	UploadedByID uint      `gorm:"index;not null" json:"uploaded_by_id"`
	Files        []File    `gorm:"many2many:production_files" json:"files,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) CreateProduction(production *Production) error {
	return translateError(s.db.Create(production).Error)
}

func (s *gormStore) UpdateProduction(production *Production) error {
	return translateError(s.db.Save(production).Error)
}

func (s *gormStore) ProductionByID(id uint) (*Production, error) {
	var production Production
	if err := s.db.First(&production, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &production, nil
}

func (s *gormStore) ListProductions(filter ProductionFilter) ([]Production, error) {
	query := s.db.Order("id")
	if filter.EditionID != 0 {
		query = query.Where("edition_id = ?", filter.EditionID)
	}
	if filter.CompoID != 0 {
		query = query.Where("compo_id = ?", filter.CompoID)
	}
	var productions []Production
	if err := query.Find(&productions).Error; err != nil {
		return nil, translateError(err)
	}
	return productions, nil
}
