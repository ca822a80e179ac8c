package voting

import (
	"time"

	"github.com/FreeMEM/DPMS/internal/db"
)

// PeriodOpen reports whether the period accepts votes at the given
// instant. Both ends of the window are inclusive.
func PeriodOpen(period *db.VotingPeriod, now time.Time) bool {
	if !period.IsActive {
		return false
	}
	return !now.Before(period.StartDate) && !now.After(period.EndDate)
}

// PeriodCovers reports whether the period applies to the given compo.
// A period without a compo applies to every compo of its edition.
func PeriodCovers(period *db.VotingPeriod, compoID uint) bool {
	return period.CompoID == nil || *period.CompoID == compoID
}

func (s *Service) votingOpenFor(editionID, compoID uint, now time.Time) (bool, error) {
	periods, err := s.store.ListPeriods(db.PeriodFilter{EditionID: editionID, ActiveOnly: true})
	if err != nil {
		return false, err
	}
	for i := range periods {
		if PeriodCovers(&periods[i], compoID) && PeriodOpen(&periods[i], now) {
			return true, nil
		}
	}
	return false, nil
}

// CreatePeriod validates and stores a voting period.
func (s *Service) CreatePeriod(period *db.VotingPeriod) error {
	if !period.EndDate.After(period.StartDate) {
		return ErrDateRange
	}
	if _, err := s.store.EditionByID(period.EditionID); err != nil {
		return err
	}
	return s.store.CreatePeriod(period)
}

// UpdatePeriod validates and stores changes to a voting period.
func (s *Service) UpdatePeriod(period *db.VotingPeriod) error {
	if !period.EndDate.After(period.StartDate) {
		return ErrDateRange
	}
	return s.store.UpdatePeriod(period)
}

// CurrentPeriods returns every period open right now, optionally
// restricted to one edition.
func (s *Service) CurrentPeriods(editionID uint) ([]db.VotingPeriod, error) {
	periods, err := s.store.ListPeriods(db.PeriodFilter{EditionID: editionID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	now := s.Now()
	open := periods[:0]
	for i := range periods {
		if PeriodOpen(&periods[i], now) {
			open = append(open, periods[i])
		}
	}
	return open, nil
}
