package db

import (
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store used for tests and for running the
// server without a database. It enforces the same uniqueness rules as
// the SQL schema, with the mutex standing in for row-level locking.
type memStore struct {
	mu sync.Mutex

	nextID          map[string]uint
	users           map[uint]*User
	editions        map[uint]*Edition
	compos          map[uint]*Compo
	hasCompos       map[uint]*HasCompo
	productions     map[uint]*Production
	files           map[uint]*File
	productionFiles map[uint][]uint
	configs         map[uint]*VotingConfiguration
	periods         map[uint]*VotingPeriod
	codes           map[uint]*AttendanceCode
	verifications   map[uint]*AttendeeVerification
	juryMembers     map[uint]*JuryMember
	votes           map[uint]*Vote
	events          map[uint]*EventLog
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() Store {
	return &memStore{
		nextID:          make(map[string]uint),
		users:           make(map[uint]*User),
		editions:        make(map[uint]*Edition),
		compos:          make(map[uint]*Compo),
		hasCompos:       make(map[uint]*HasCompo),
		productions:     make(map[uint]*Production),
		files:           make(map[uint]*File),
		productionFiles: make(map[uint][]uint),
		configs:         make(map[uint]*VotingConfiguration),
		periods:         make(map[uint]*VotingPeriod),
		codes:           make(map[uint]*AttendanceCode),
		verifications:   make(map[uint]*AttendeeVerification),
		juryMembers:     make(map[uint]*JuryMember),
		votes:           make(map[uint]*Vote),
		events:          make(map[uint]*EventLog),
	}
}

func (s *memStore) allocate(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// users

func (s *memStore) CreateUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	user.ID = s.allocate("users")
	user.CreatedAt = nowUTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memStore) UserByEmail(email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) UserByID(id uint) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// editions and compos

func (s *memStore) CreateEdition(edition *Edition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	edition.ID = s.allocate("editions")
	edition.CreatedAt = nowUTC()
	edition.UpdatedAt = edition.CreatedAt
	clone := *edition
	s.editions[edition.ID] = &clone
	return nil
}

func (s *memStore) UpdateEdition(edition *Edition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.editions[edition.ID]; !ok {
		return ErrNotFound
	}
	edition.UpdatedAt = nowUTC()
	clone := *edition
	s.editions[edition.ID] = &clone
	return nil
}

func (s *memStore) DeleteEdition(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.editions[id]; !ok {
		return ErrNotFound
	}
	delete(s.editions, id)
	return nil
}

func (s *memStore) EditionByID(id uint) (*Edition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edition, ok := s.editions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *edition
	return &clone, nil
}

func (s *memStore) ListEditions(publicOnly bool) ([]Edition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var editions []Edition
	for _, edition := range s.editions {
		if publicOnly && !edition.Public {
			continue
		}
		editions = append(editions, *edition)
	}
	sort.Slice(editions, func(i, j int) bool { return editions[i].ID < editions[j].ID })
	return editions, nil
}

func (s *memStore) CreateCompo(compo *Compo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	compo.ID = s.allocate("compos")
	compo.CreatedAt = nowUTC()
	compo.UpdatedAt = compo.CreatedAt
	clone := *compo
	s.compos[compo.ID] = &clone
	return nil
}

func (s *memStore) CompoByID(id uint) (*Compo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	compo, ok := s.compos[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *compo
	return &clone, nil
}

func (s *memStore) ListCompos() ([]Compo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var compos []Compo
	for _, compo := range s.compos {
		compos = append(compos, *compo)
	}
	sort.Slice(compos, func(i, j int) bool { return compos[i].ID < compos[j].ID })
	return compos, nil
}

func (s *memStore) AttachCompo(link *HasCompo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.editions[link.EditionID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.compos[link.CompoID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.hasCompos {
		if existing.EditionID == link.EditionID && existing.CompoID == link.CompoID {
			return ErrDuplicate
		}
	}
	link.ID = s.allocate("has_compos")
	link.CreatedAt = nowUTC()
	link.UpdatedAt = link.CreatedAt
	clone := *link
	s.hasCompos[link.ID] = &clone
	return nil
}

func (s *memStore) EditionCompos(editionID uint) ([]Compo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var compos []Compo
	for _, link := range s.hasCompos {
		if link.EditionID != editionID {
			continue
		}
		if compo, ok := s.compos[link.CompoID]; ok {
			compos = append(compos, *compo)
		}
	}
	sort.Slice(compos, func(i, j int) bool { return compos[i].ID < compos[j].ID })
	return compos, nil
}

// productions and files

func (s *memStore) CreateProduction(production *Production) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	production.ID = s.allocate("productions")
	production.CreatedAt = nowUTC()
	production.UpdatedAt = production.CreatedAt
	clone := *production
	s.productions[production.ID] = &clone
	return nil
}

func (s *memStore) UpdateProduction(production *Production) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productions[production.ID]; !ok {
		return ErrNotFound
	}
	production.UpdatedAt = nowUTC()
	clone := *production
	s.productions[production.ID] = &clone
	return nil
}

func (s *memStore) ProductionByID(id uint) (*Production, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	production, ok := s.productions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *production
	return &clone, nil
}

func (s *memStore) ListProductions(filter ProductionFilter) ([]Production, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var productions []Production
	for _, production := range s.productions {
		if filter.EditionID != 0 && production.EditionID != filter.EditionID {
			continue
		}
		if filter.CompoID != 0 && production.CompoID != filter.CompoID {
			continue
		}
		productions = append(productions, *production)
	}
	sort.Slice(productions, func(i, j int) bool { return productions[i].ID < productions[j].ID })
	return productions, nil
}

func (s *memStore) CreateFile(file *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.files {
		if existing.StoredName == file.StoredName {
			return ErrDuplicate
		}
	}
	file.ID = s.allocate("files")
	file.CreatedAt = nowUTC()
	file.UpdatedAt = file.CreatedAt
	clone := *file
	s.files[file.ID] = &clone
	return nil
}

func (s *memStore) FileByID(id uint) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *file
	return &clone, nil
}

func (s *memStore) AttachFile(productionID, fileID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productions[productionID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.files[fileID]; !ok {
		return ErrNotFound
	}
	for _, id := range s.productionFiles[productionID] {
		if id == fileID {
			return nil
		}
	}
	s.productionFiles[productionID] = append(s.productionFiles[productionID], fileID)
	return nil
}

func (s *memStore) ProductionFiles(productionID uint) ([]File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productions[productionID]; !ok {
		return nil, ErrNotFound
	}
	var files []File
	for _, id := range s.productionFiles[productionID] {
		if file, ok := s.files[id]; ok {
			files = append(files, *file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

// voting configuration

func (s *memStore) SaveVotingConfig(config *VotingConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.configs {
		if existing.EditionID == config.EditionID && existing.ID != config.ID {
			return ErrDuplicate
		}
	}
	if config.ID == 0 {
		config.ID = s.allocate("voting_configurations")
		config.CreatedAt = nowUTC()
	}
	config.UpdatedAt = nowUTC()
	clone := *config
	s.configs[config.ID] = &clone
	return nil
}

func (s *memStore) VotingConfigByEdition(editionID uint) (*VotingConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, config := range s.configs {
		if config.EditionID == editionID {
			clone := *config
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

// voting periods

func (s *memStore) CreatePeriod(period *VotingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	period.ID = s.allocate("voting_periods")
	period.CreatedAt = nowUTC()
	period.UpdatedAt = period.CreatedAt
	clone := *period
	s.periods[period.ID] = &clone
	return nil
}

func (s *memStore) UpdatePeriod(period *VotingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.periods[period.ID]; !ok {
		return ErrNotFound
	}
	period.UpdatedAt = nowUTC()
	clone := *period
	s.periods[period.ID] = &clone
	return nil
}

func (s *memStore) DeletePeriod(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.periods[id]; !ok {
		return ErrNotFound
	}
	delete(s.periods, id)
	return nil
}

func (s *memStore) PeriodByID(id uint) (*VotingPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	period, ok := s.periods[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *period
	return &clone, nil
}

func (s *memStore) ListPeriods(filter PeriodFilter) ([]VotingPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var periods []VotingPeriod
	for _, period := range s.periods {
		if filter.EditionID != 0 && period.EditionID != filter.EditionID {
			continue
		}
		if filter.ActiveOnly && !period.IsActive {
			continue
		}
		periods = append(periods, *period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].StartDate.After(periods[j].StartDate) })
	return periods, nil
}

// attendance codes

func (s *memStore) CreateCodes(codes []AttendanceCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, dup := seen[code.Code]; dup {
			return ErrDuplicate
		}
		seen[code.Code] = struct{}{}
		for _, existing := range s.codes {
			if existing.Code == code.Code {
				return ErrDuplicate
			}
		}
	}
	for i := range codes {
		codes[i].ID = s.allocate("attendance_codes")
		codes[i].CreatedAt = nowUTC()
		codes[i].UpdatedAt = codes[i].CreatedAt
		clone := codes[i]
		s.codes[codes[i].ID] = &clone
	}
	return nil
}

func (s *memStore) CodeExists(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.codes {
		if existing.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CodeByValue(code string) (*AttendanceCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.codes {
		if existing.Code == code {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) CodeByID(id uint) (*AttendanceCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *code
	return &clone, nil
}

func (s *memStore) ListCodes(editionID uint, used *bool) ([]AttendanceCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var codes []AttendanceCode
	for _, code := range s.codes {
		if editionID != 0 && code.EditionID != editionID {
			continue
		}
		if used != nil && code.IsUsed != *used {
			continue
		}
		codes = append(codes, *code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].Code < codes[j].Code })
	return codes, nil
}

func (s *memStore) RedeemCode(code string, userID uint, at time.Time) (*AttendanceCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.codes {
		if existing.Code != code {
			continue
		}
		if existing.IsUsed {
			return nil, ErrCodeUsed
		}
		existing.IsUsed = true
		existing.UsedByID = &userID
		usedAt := at
		existing.UsedAt = &usedAt
		existing.UpdatedAt = nowUTC()
		clone := *existing
		return &clone, nil
	}
	return nil, ErrNotFound
}

// attendee verifications

func (s *memStore) UpsertVerification(verification *AttendeeVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.verifications {
		if existing.UserID == verification.UserID && existing.EditionID == verification.EditionID {
			verification.ID = existing.ID
			verification.CreatedAt = existing.CreatedAt
			verification.UpdatedAt = nowUTC()
			clone := *verification
			s.verifications[existing.ID] = &clone
			return nil
		}
	}
	verification.ID = s.allocate("attendee_verifications")
	verification.CreatedAt = nowUTC()
	verification.UpdatedAt = verification.CreatedAt
	clone := *verification
	s.verifications[verification.ID] = &clone
	return nil
}

func (s *memStore) VerificationFor(userID, editionID uint) (*AttendeeVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, verification := range s.verifications {
		if verification.UserID == userID && verification.EditionID == editionID {
			clone := *verification
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) ListVerifications(editionID uint, verified *bool) ([]AttendeeVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var verifications []AttendeeVerification
	for _, verification := range s.verifications {
		if editionID != 0 && verification.EditionID != editionID {
			continue
		}
		if verified != nil && verification.IsVerified != *verified {
			continue
		}
		verifications = append(verifications, *verification)
	}
	sort.Slice(verifications, func(i, j int) bool { return verifications[i].ID < verifications[j].ID })
	return verifications, nil
}

// jury

func (s *memStore) CreateJuryMember(member *JuryMember, compoIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.juryMembers {
		if existing.UserID == member.UserID && existing.EditionID == member.EditionID {
			return ErrDuplicate
		}
	}
	member.Compos = nil
	for _, compoID := range compoIDs {
		compo, ok := s.compos[compoID]
		if !ok {
			return ErrNotFound
		}
		member.Compos = append(member.Compos, *compo)
	}
	member.ID = s.allocate("jury_members")
	member.CreatedAt = nowUTC()
	member.UpdatedAt = member.CreatedAt
	clone := *member
	clone.Compos = append([]Compo(nil), member.Compos...)
	s.juryMembers[member.ID] = &clone
	return nil
}

func (s *memStore) DeleteJuryMember(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.juryMembers[id]; !ok {
		return ErrNotFound
	}
	delete(s.juryMembers, id)
	return nil
}

func (s *memStore) JuryMemberByID(id uint) (*JuryMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.juryMembers[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *member
	clone.Compos = append([]Compo(nil), member.Compos...)
	return &clone, nil
}

func (s *memStore) JuryMemberFor(userID, editionID uint) (*JuryMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, member := range s.juryMembers {
		if member.UserID == userID && member.EditionID == editionID {
			clone := *member
			clone.Compos = append([]Compo(nil), member.Compos...)
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) ListJuryMembers(editionID uint) ([]JuryMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []JuryMember
	for _, member := range s.juryMembers {
		if editionID != 0 && member.EditionID != editionID {
			continue
		}
		clone := *member
		clone.Compos = append([]Compo(nil), member.Compos...)
		members = append(members, clone)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

// votes

func (s *memStore) SaveVote(vote *Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.votes {
		if existing.UserID == vote.UserID && existing.ProductionID == vote.ProductionID {
			existing.Score = vote.Score
			existing.Comment = vote.Comment
			existing.UpdatedAt = nowUTC()
			*vote = *existing
			return nil
		}
	}
	vote.ID = s.allocate("votes")
	vote.CreatedAt = nowUTC()
	vote.UpdatedAt = vote.CreatedAt
	clone := *vote
	s.votes[vote.ID] = &clone
	return nil
}

func (s *memStore) VoteFor(userID, productionID uint) (*Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vote := range s.votes {
		if vote.UserID == userID && vote.ProductionID == productionID {
			clone := *vote
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) VotesByUser(userID uint, editionID uint) ([]Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var votes []Vote
	for _, vote := range s.votes {
		if vote.UserID != userID {
			continue
		}
		if editionID != 0 {
			production, ok := s.productions[vote.ProductionID]
			if !ok || production.EditionID != editionID {
				continue
			}
		}
		votes = append(votes, *vote)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

func (s *memStore) VotesForProduction(productionID uint) ([]Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var votes []Vote
	for _, vote := range s.votes {
		if vote.ProductionID == productionID {
			votes = append(votes, *vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

func (s *memStore) VotesForEdition(editionID uint) ([]Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var votes []Vote
	for _, vote := range s.votes {
		production, ok := s.productions[vote.ProductionID]
		if !ok || production.EditionID != editionID {
			continue
		}
		votes = append(votes, *vote)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

// audit events

func (s *memStore) AppendEvent(event *EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.allocate("event_logs")
	event.CreatedAt = nowUTC()
	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *memStore) ListEvents(editionID uint, limit int) ([]EventLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []EventLog
	for _, event := range s.events {
		if editionID != 0 && (event.EditionID == nil || *event.EditionID != editionID) {
			continue
		}
		events = append(events, *event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID > events[j].ID })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
