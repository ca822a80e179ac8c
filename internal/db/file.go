package db

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// File records an uploaded production file. The upload transport itself
// lives outside this service; DPMS stores metadata and the generated
// storage name only.
type File struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      string    `gorm:"type:text;not null;default:''" json:"description"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	StoredName       string    `gorm:"size:255;uniqueIndex;not null" json:"stored_name"`
	Public           bool      `gorm:"not null;default:false" json:"public"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	IsDeleted        bool      `gorm:"not null;default:false" json:"is_deleted"`
	UploadedByID     uint      `gorm:"index;not null" json:"uploaded_by_id"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

// NewStoredName returns the on-disk name for an upload. The original
// extension is kept so static servers pick a sensible content type.
func NewStoredName(originalFilename string) string {
	return uuid.NewString() + filepath.Ext(originalFilename)
}

func (s *gormStore) CreateFile(file *File) error {
	return translateError(s.db.Create(file).Error)
}

func (s *gormStore) FileByID(id uint) (*File, error) {
	var file File
	if err := s.db.First(&file, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &file, nil
}

func (s *gormStore) AttachFile(productionID, fileID uint) error {
	production, err := s.ProductionByID(productionID)
	if err != nil {
		return err
	}
	file, err := s.FileByID(fileID)
	if err != nil {
		return err
	}
	return translateError(s.db.Model(production).Association("Files").Append(file))
}

func (s *gormStore) ProductionFiles(productionID uint) ([]File, error) {
	production, err := s.ProductionByID(productionID)
	if err != nil {
		return nil, err
	}
	var files []File
	if err := s.db.Model(production).Association("Files").Find(&files); err != nil {
		return nil, translateError(err)
	}
	return files, nil
}
