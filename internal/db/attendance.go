package db

import "time"

// Verification methods.
const (
	VerificationMethodManual  = "manual"
	VerificationMethodCode    = "code"
	VerificationMethodCheckin = "checkin"
)

type AttendanceCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	EditionID uint       `gorm:"index;not null" json:"edition_id"`
	IsUsed    bool       `gorm:"not null;default:false" json:"is_used"`
	UsedByID  *uint      `gorm:"index" json:"used_by_id"`
	UsedAt    *time.Time `json:"used_at"`
	Notes     string     `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

type AttendeeVerification struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;uniqueIndex:idx_verifications_user_edition" json:"user_id"`
	EditionID          uint       `gorm:"not null;uniqueIndex:idx_verifications_user_edition" json:"edition_id"`
	IsVerified         bool       `gorm:"not null;default:false" json:"is_verified"`
	VerificationMethod string     `gorm:"size:20;not null;default:manual" json:"verification_method"`
	VerifiedByID       *uint      `gorm:"index" json:"verified_by_id"`
	VerifiedAt         *time.Time `json:"verified_at"`
	Notes              string     `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (s *gormStore) CreateCodes(codes []AttendanceCode) error {
	if len(codes) == 0 {
		return nil
	}
	return translateError(s.db.Create(&codes).Error)
}

func (s *gormStore) CodeExists(code string) (bool, error) {
	var count int64
	if err := s.db.Model(&AttendanceCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (s *gormStore) CodeByValue(code string) (*AttendanceCode, error) {
	var record AttendanceCode
	if err := s.db.Where("code = ?", code).First(&record).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

func (s *gormStore) CodeByID(id uint) (*AttendanceCode, error) {
	var record AttendanceCode
	if err := s.db.First(&record, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

func (s *gormStore) ListCodes(editionID uint, used *bool) ([]AttendanceCode, error) {
	query := s.db.Order("code")
	if editionID != 0 {
		query = query.Where("edition_id = ?", editionID)
	}
	if used != nil {
		query = query.Where("is_used = ?", *used)
	}
	var codes []AttendanceCode
	if err := query.Find(&codes).Error; err != nil {
		return nil, translateError(err)
	}
	return codes, nil
}

// RedeemCode marks the code used with a conditional update so that
// concurrent redemptions resolve to a single winner at the database.
func (s *gormStore) RedeemCode(code string, userID uint, at time.Time) (*AttendanceCode, error) {
	result := s.db.Model(&AttendanceCode{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]any{
			"is_used":    true,
			"used_by_id": userID,
			"used_at":    at,
		})
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		record, err := s.CodeByValue(code)
		if err != nil {
			return nil, err
		}
		if record.IsUsed {
			return nil, ErrCodeUsed
		}
		return nil, ErrNotFound
	}
	return s.CodeByValue(code)
}

func (s *gormStore) UpsertVerification(verification *AttendeeVerification) error {
	var existing AttendeeVerification
	err := s.db.
		Where("user_id = ? AND edition_id = ?", verification.UserID, verification.EditionID).
		First(&existing).Error
	if err == nil {
		verification.ID = existing.ID
		verification.CreatedAt = existing.CreatedAt
		return translateError(s.db.Save(verification).Error)
	}
	if createErr := translateError(s.db.Create(verification).Error); createErr != nil {
		// A concurrent upsert may have inserted the row between the
		// lookup and the create; retry once as an update.
		if createErr == ErrDuplicate {
			return s.UpsertVerification(verification)
		}
		return createErr
	}
	return nil
}

func (s *gormStore) VerificationFor(userID, editionID uint) (*AttendeeVerification, error) {
	var verification AttendeeVerification
	err := s.db.Where("user_id = ? AND edition_id = ?", userID, editionID).First(&verification).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &verification, nil
}

func (s *gormStore) ListVerifications(editionID uint, verified *bool) ([]AttendeeVerification, error) {
	query := s.db.Order("id")
	if editionID != 0 {
		query = query.Where("edition_id = ?", editionID)
	}
	if verified != nil {
		query = query.Where("is_verified = ?", *verified)
	}
	var verifications []AttendeeVerification
	if err := query.Find(&verifications).Error; err != nil {
		return nil, translateError(err)
	}
	return verifications, nil
}
