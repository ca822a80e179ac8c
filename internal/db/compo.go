package db

import "time"

type Compo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	CreatedByID uint      `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) CreateCompo(compo *Compo) error {
	return translateError(s.db.Create(compo).Error)
}

func (s *gormStore) CompoByID(id uint) (*Compo, error) {
	var compo Compo
	if err := s.db.First(&compo, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &compo, nil
}

func (s *gormStore) ListCompos() ([]Compo, error) {
	var compos []Compo
	if err := s.db.Order("id").Find(&compos).Error; err != nil {
		return nil, translateError(err)
	}
	return compos, nil
}
