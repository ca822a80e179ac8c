package db

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func seedUser(t *testing.T, store Store, email string) *User {
	t.Helper()
	user := &User{Email: email, Username: email, PasswordHash: "x"}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedEdition(t *testing.T, store Store, title string, by uint) *Edition {
	t.Helper()
	edition := &Edition{Title: title, UploadedByID: by}
	if err := store.CreateEdition(edition); err != nil {
		t.Fatalf("create edition: %v", err)
	}
	return edition
}

func TestMemStoreUserEmailUnique(t *testing.T) {
	store := NewMemStore()
	seedUser(t, store, "a@b.example")
	dup := &User{Email: "a@b.example", Username: "dup", PasswordHash: "x"}
	if err := store.CreateUser(dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemStoreEditionCompos(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)

	demo := &Compo{Name: "Demo", CreatedByID: user.ID}
	music := &Compo{Name: "Music", CreatedByID: user.ID}
	for _, compo := range []*Compo{demo, music} {
		if err := store.CreateCompo(compo); err != nil {
			t.Fatalf("create compo: %v", err)
		}
	}
	link := &HasCompo{EditionID: edition.ID, CompoID: demo.ID, Start: time.Now(), CreatedByID: user.ID}
	if err := store.AttachCompo(link); err != nil {
		t.Fatalf("attach compo: %v", err)
	}
	if err := store.AttachCompo(&HasCompo{EditionID: edition.ID, CompoID: demo.ID, Start: time.Now(), CreatedByID: user.ID}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on second attach, got %v", err)
	}

	compos, err := store.EditionCompos(edition.ID)
	if err != nil {
		t.Fatalf("edition compos: %v", err)
	}
	if len(compos) != 1 || compos[0].ID != demo.ID {
		t.Fatalf("unexpected compos: %+v", compos)
	}
}

func TestMemStoreSaveVoteKeepsJuryFlag(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)
	production := &Production{Title: "P", Authors: "A", EditionID: edition.ID, CompoID: 1, UploadedByID: user.ID}
	if err := store.CreateProduction(production); err != nil {
		t.Fatalf("create production: %v", err)
	}

	first := &Vote{UserID: user.ID, ProductionID: production.ID, Score: 5, IsJuryVote: true}
	if err := store.SaveVote(first); err != nil {
		t.Fatalf("save vote: %v", err)
	}
	// An update carrying a different jury flag must not flip the row.
	update := &Vote{UserID: user.ID, ProductionID: production.ID, Score: 9, IsJuryVote: false}
	if err := store.SaveVote(update); err != nil {
		t.Fatalf("update vote: %v", err)
	}
	if update.ID != first.ID {
		t.Fatalf("expected update of vote %d, got %d", first.ID, update.ID)
	}
	if !update.IsJuryVote {
		t.Fatalf("jury flag lost on update")
	}
	if update.Score != 9 {
		t.Fatalf("score not updated: %+v", update)
	}
}

func TestMemStoreRedeemCodeTransitions(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)
	if err := store.CreateCodes([]AttendanceCode{{Code: "PRTY-AAAA-BBBB", EditionID: edition.ID}}); err != nil {
		t.Fatalf("create codes: %v", err)
	}

	now := time.Now().UTC()
	redeemed, err := store.RedeemCode("PRTY-AAAA-BBBB", user.ID, now)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !redeemed.IsUsed || redeemed.UsedByID == nil || *redeemed.UsedByID != user.ID {
		t.Fatalf("unexpected redeemed code: %+v", redeemed)
	}

	if _, err := store.RedeemCode("PRTY-AAAA-BBBB", user.ID, now); !errors.Is(err, ErrCodeUsed) {
		t.Fatalf("expected ErrCodeUsed, got %v", err)
	}
	if _, err := store.RedeemCode("PRTY-ZZZZ-ZZZZ", user.ID, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreCreateCodesRejectsDuplicates(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)
	if err := store.CreateCodes([]AttendanceCode{{Code: "PRTY-AAAA-BBBB", EditionID: edition.ID}}); err != nil {
		t.Fatalf("create codes: %v", err)
	}
	err := store.CreateCodes([]AttendanceCode{{Code: "PRTY-AAAA-BBBB", EditionID: edition.ID}})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemStoreListPeriodsActiveOnly(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)
	now := time.Now().UTC()
	active := &VotingPeriod{EditionID: edition.ID, StartDate: now, EndDate: now.Add(time.Hour), IsActive: true}
	inactive := &VotingPeriod{EditionID: edition.ID, StartDate: now, EndDate: now.Add(time.Hour), IsActive: false}
	for _, period := range []*VotingPeriod{active, inactive} {
		if err := store.CreatePeriod(period); err != nil {
			t.Fatalf("create period: %v", err)
		}
	}

	periods, err := store.ListPeriods(PeriodFilter{EditionID: edition.ID, ActiveOnly: true})
	if err != nil {
		t.Fatalf("list periods: %v", err)
	}
	if len(periods) != 1 || periods[0].ID != active.ID {
		t.Fatalf("unexpected periods: %+v", periods)
	}
}

func TestMemStoreAttachFile(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)
	production := &Production{Title: "P", Authors: "A", EditionID: edition.ID, CompoID: 1, UploadedByID: user.ID}
	if err := store.CreateProduction(production); err != nil {
		t.Fatalf("create production: %v", err)
	}
	file := &File{Title: "Archive", OriginalFilename: "demo.zip", StoredName: NewStoredName("demo.zip"), UploadedByID: user.ID}
	if err := store.CreateFile(file); err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := store.AttachFile(production.ID, file.ID); err != nil {
		t.Fatalf("attach file: %v", err)
	}
	// Attaching twice is a no-op, not an error.
	if err := store.AttachFile(production.ID, file.ID); err != nil {
		t.Fatalf("re-attach file: %v", err)
	}

	files, err := store.ProductionFiles(production.ID)
	if err != nil {
		t.Fatalf("production files: %v", err)
	}
	if len(files) != 1 || files[0].ID != file.ID {
		t.Fatalf("unexpected files: %+v", files)
	}

	if err := store.AttachFile(production.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreJuryMemberUnique(t *testing.T) {
	store := NewMemStore()
	user := seedUser(t, store, "a@b.example")
	edition := seedEdition(t, store, "Party", user.ID)

	member := &JuryMember{UserID: user.ID, EditionID: edition.ID}
	if err := store.CreateJuryMember(member, nil); err != nil {
		t.Fatalf("create member: %v", err)
	}
	dup := &JuryMember{UserID: user.ID, EditionID: edition.ID}
	if err := store.CreateJuryMember(dup, nil); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemStoreEventsNewestFirst(t *testing.T) {
	store := NewMemStore()
	editionID := uint(1)
	for _, kind := range []string{EventCodesGenerated, EventCodeRedeemed, EventVoteCast} {
		if err := store.AppendEvent(&EventLog{EditionID: &editionID, Type: kind, Payload: datatypes.JSON(`{}`)}); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	events, err := store.ListEvents(editionID, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventVoteCast {
		t.Fatalf("expected newest first, got %s", events[0].Type)
	}
}
