package db

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate record")
	// ErrCodeUsed is returned when redeeming an attendance code that has
	// already been redeemed.
	ErrCodeUsed = errors.New("attendance code already used")
)

type ProductionFilter struct {
	EditionID uint
	CompoID   uint
}

type PeriodFilter struct {
	EditionID  uint
	ActiveOnly bool
}

// Store is the persistence boundary shared by the Postgres-backed store
// and the in-memory store used for tests and database-less runs.
type Store interface {
	// users
	CreateUser(user *User) error
	UserByEmail(email string) (*User, error)
	UserByID(id uint) (*User, error)

	// editions and compos
	CreateEdition(edition *Edition) error
	UpdateEdition(edition *Edition) error
	DeleteEdition(id uint) error
	EditionByID(id uint) (*Edition, error)
	ListEditions(publicOnly bool) ([]Edition, error)
	CreateCompo(compo *Compo) error
	CompoByID(id uint) (*Compo, error)
	ListCompos() ([]Compo, error)
	AttachCompo(link *HasCompo) error
	EditionCompos(editionID uint) ([]Compo, error)

	// productions and files
	CreateProduction(production *Production) error
	UpdateProduction(production *Production) error
	ProductionByID(id uint) (*Production, error)
	ListProductions(filter ProductionFilter) ([]Production, error)
	CreateFile(file *File) error
	FileByID(id uint) (*File, error)
	AttachFile(productionID, fileID uint) error
	ProductionFiles(productionID uint) ([]File, error)

	// voting configuration
	SaveVotingConfig(config *VotingConfiguration) error
	VotingConfigByEdition(editionID uint) (*VotingConfiguration, error)

	// voting periods
	CreatePeriod(period *VotingPeriod) error
	UpdatePeriod(period *VotingPeriod) error
	DeletePeriod(id uint) error
	PeriodByID(id uint) (*VotingPeriod, error)
	ListPeriods(filter PeriodFilter) ([]VotingPeriod, error)

	// attendance codes
	CreateCodes(codes []AttendanceCode) error
	CodeExists(code string) (bool, error)
	CodeByValue(code string) (*AttendanceCode, error)
	CodeByID(id uint) (*AttendanceCode, error)
	ListCodes(editionID uint, used *bool) ([]AttendanceCode, error)
	// RedeemCode flips the code to used if and only if it is currently
	// unused. Exactly one caller wins under concurrent redemption; the
	// rest receive ErrCodeUsed.
	RedeemCode(code string, userID uint, at time.Time) (*AttendanceCode, error)

	// attendee verifications
	UpsertVerification(verification *AttendeeVerification) error
	VerificationFor(userID, editionID uint) (*AttendeeVerification, error)
	ListVerifications(editionID uint, verified *bool) ([]AttendeeVerification, error)

	// jury
	CreateJuryMember(member *JuryMember, compoIDs []uint) error
	DeleteJuryMember(id uint) error
	JuryMemberByID(id uint) (*JuryMember, error)
	JuryMemberFor(userID, editionID uint) (*JuryMember, error)
	ListJuryMembers(editionID uint) ([]JuryMember, error)

	// votes
	// SaveVote inserts a vote, or updates score and comment in place when
	// the (user, production) pair already has one. IsJuryVote is fixed at
	// creation and never changed by an update.
	SaveVote(vote *Vote) error
	VoteFor(userID, productionID uint) (*Vote, error)
	VotesByUser(userID uint, editionID uint) ([]Vote, error)
	VotesForProduction(productionID uint) ([]Vote, error)
	VotesForEdition(editionID uint) ([]Vote, error)

	// audit events
	AppendEvent(event *EventLog) error
	ListEvents(editionID uint, limit int) ([]EventLog, error)
}
