package voting

import (
	"crypto/rand"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/FreeMEM/DPMS/internal/db"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// createAttempts bounds the retry loop for a batch insert losing a
// uniqueness race against a concurrent batch.
const createAttempts = 3

func randomSegment(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = codeAlphabet[0]
		}
		return string(buf)
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf)
}

// DefaultCodePrefix derives the code prefix from an edition title: the
// first four characters, uppercased, with spaces stripped.
func DefaultCodePrefix(title string) string {
	prefix := title
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	prefix = strings.ReplaceAll(strings.ToUpper(prefix), " ", "")
	if prefix == "" {
		prefix = "DPMS"
	}
	return prefix
}

// GenerateCodes creates a batch of unique attendance codes for an
// edition. Each code is PREFIX-XXXX-YYYY with random uppercase
// alphanumeric segments, checked against persisted codes before insert.
// The insert itself retries on a uniqueness violation in case two
// batches race on the same candidate.
func (s *Service) GenerateCodes(editionID uint, quantity int, prefix string) ([]db.AttendanceCode, error) {
	if quantity < 1 || quantity > s.codeBatchMax {
		return nil, ErrInvalidQuantity
	}
	edition, err := s.store.EditionByID(editionID)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultCodePrefix(edition.Title)
	}

	var codes []db.AttendanceCode
	for attempt := 0; attempt < createAttempts; attempt++ {
		codes, err = s.buildCodeBatch(edition.ID, prefix, quantity)
		if err != nil {
			return nil, err
		}
		err = s.store.CreateCodes(codes)
		if err == nil {
			break
		}
		if err != db.ErrDuplicate {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.appendEvent(&edition.ID, nil, db.EventCodesGenerated, datatypes.JSON(
		fmt.Sprintf(`{"quantity":%d,"prefix":%q}`, quantity, prefix),
	))
	return codes, nil
}

func (s *Service) buildCodeBatch(editionID uint, prefix string, quantity int) ([]db.AttendanceCode, error) {
	codes := make([]db.AttendanceCode, 0, quantity)
	seen := make(map[string]struct{}, quantity)
	for len(codes) < quantity {
		candidate := fmt.Sprintf("%s-%s-%s", prefix, randomSegment(4), randomSegment(4))
		if _, dup := seen[candidate]; dup {
			continue
		}
		exists, err := s.store.CodeExists(candidate)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		seen[candidate] = struct{}{}
		codes = append(codes, db.AttendanceCode{
			Code:      candidate,
			EditionID: editionID,
		})
	}
	return codes, nil
}

// RedeemCode marks an attendance code used by the given user and records
// an attendee verification for the code's edition. Redemption is a
// one-way transition; a second redemption fails with ErrCodeAlreadyUsed.
func (s *Service) RedeemCode(userID uint, code string) (*db.AttendanceCode, error) {
	now := s.Now()
	redeemed, err := s.store.RedeemCode(strings.TrimSpace(code), userID, now)
	switch err {
	case nil:
	case db.ErrNotFound:
		return nil, ErrInvalidCode
	case db.ErrCodeUsed:
		return nil, ErrCodeAlreadyUsed
	default:
		return nil, err
	}

	verification := &db.AttendeeVerification{
		UserID:             userID,
		EditionID:          redeemed.EditionID,
		IsVerified:         true,
		VerificationMethod: db.VerificationMethodCode,
		VerifiedAt:         &now,
		Notes:              "code: " + redeemed.Code,
	}
	if err := s.store.UpsertVerification(verification); err != nil {
		return nil, err
	}

	s.appendEvent(&redeemed.EditionID, &userID, db.EventCodeRedeemed, datatypes.JSON(
		fmt.Sprintf(`{"code":%q}`, redeemed.Code),
	))
	return redeemed, nil
}
