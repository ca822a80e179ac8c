package db

import "time"

type Edition struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text;not null;default:''" json:"description"`
	Public       bool      `gorm:"not null;default:false" json:"public"`
	OpenToUpload bool      `gorm:"not null;default:false" json:"open_to_upload"`
	OpenToUpdate bool      `gorm:"not null;default:false" json:"open_to_update"`
	UploadedByID uint      `gorm:"index;not null" json:"uploaded_by_id"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// HasCompo links a compo into an edition's schedule.
type HasCompo struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	EditionID          uint      `gorm:"index;not null;uniqueIndex:idx_has_compos_edition_compo" json:"edition_id"`
	CompoID            uint      `gorm:"index;not null;uniqueIndex:idx_has_compos_edition_compo" json:"compo_id"`
	Start              time.Time `gorm:"not null" json:"start"`
	ShowAuthorsOnSlide bool      `gorm:"not null;default:true" json:"show_authors_on_slide"`
	OpenToUpload       bool      `gorm:"not null;default:false" json:"open_to_upload"`
	OpenToUpdate       bool      `gorm:"not null;default:false" json:"open_to_update"`
	CreatedByID        uint      `gorm:"index;not null" json:"created_by_id"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) CreateEdition(edition *Edition) error {
	return translateError(s.db.Create(edition).Error)
}

func (s *gormStore) UpdateEdition(edition *Edition) error {
	return translateError(s.db.Save(edition).Error)
}

func (s *gormStore) DeleteEdition(id uint) error {
	result := s.db.Delete(&Edition{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) EditionByID(id uint) (*Edition, error) {
	var edition Edition
	if err := s.db.First(&edition, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &edition, nil
}

func (s *gormStore) ListEditions(publicOnly bool) ([]Edition, error) {
	query := s.db.Order("id")
	if publicOnly {
		query = query.Where("public = ?", true)
	}
	var editions []Edition
	if err := query.Find(&editions).Error; err != nil {
		return nil, translateError(err)
	}
	return editions, nil
}

func (s *gormStore) AttachCompo(link *HasCompo) error {
	return translateError(s.db.Create(link).Error)
}

func (s *gormStore) EditionCompos(editionID uint) ([]Compo, error) {
	var compos []Compo
	err := s.db.
		Joins("JOIN has_compos ON has_compos.compo_id = compos.id").
		Where("has_compos.edition_id = ?", editionID).
		Order("compos.id").
		Find(&compos).Error
	if err != nil {
		return nil, translateError(err)
	}
	return compos, nil
}
