package db

import "time"

// JuryMember enrolls a user as jury for an edition. An empty compo set
// means the member may vote in every compo of the edition.
type JuryMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_jury_members_user_edition" json:"user_id"`
	EditionID uint      `gorm:"not null;uniqueIndex:idx_jury_members_user_edition" json:"edition_id"`
	Compos    []Compo   `gorm:"many2many:jury_member_compos" json:"compos"`
	Notes     string    `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) CreateJuryMember(member *JuryMember, compoIDs []uint) error {
	if len(compoIDs) > 0 {
		var compos []Compo
		if err := s.db.Find(&compos, compoIDs).Error; err != nil {
			return translateError(err)
		}
		if len(compos) != len(compoIDs) {
			return ErrNotFound
		}
		member.Compos = compos
	}
	return translateError(s.db.Create(member).Error)
}

func (s *gormStore) DeleteJuryMember(id uint) error {
	result := s.db.Select("Compos").Delete(&JuryMember{ID: id})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) JuryMemberByID(id uint) (*JuryMember, error) {
	var member JuryMember
	if err := s.db.Preload("Compos").First(&member, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &member, nil
}

func (s *gormStore) JuryMemberFor(userID, editionID uint) (*JuryMember, error) {
	var member JuryMember
	err := s.db.Preload("Compos").
		Where("user_id = ? AND edition_id = ?", userID, editionID).
		First(&member).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &member, nil
}

func (s *gormStore) ListJuryMembers(editionID uint) ([]JuryMember, error) {
	query := s.db.Preload("Compos").Order("id")
	if editionID != 0 {
		query = query.Where("edition_id = ?", editionID)
	}
	var members []JuryMember
	if err := query.Find(&members).Error; err != nil {
		return nil, translateError(err)
	}
	return members, nil
}
