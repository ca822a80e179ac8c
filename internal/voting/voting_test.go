package voting

import (
	"testing"
	"time"

	"github.com/FreeMEM/DPMS/internal/db"
)

var testNow = time.Date(2026, 4, 3, 20, 0, 0, 0, time.UTC)

// fixture wires a service over the in-memory store with one edition,
// one scheduled compo, one production and an open voting period.
type fixture struct {
	svc        *Service
	store      db.Store
	admin      *db.User
	voter      *db.User
	edition    *db.Edition
	compo      *db.Compo
	production *db.Production
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := db.NewMemStore()
	svc := NewService(store, 1000, 500)
	svc.Now = func() time.Time { return testNow }

	admin := &db.User{Email: "admin@party.example", Username: "admin", PasswordHash: "x", IsAdmin: true}
	if err := store.CreateUser(admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	voter := &db.User{Email: "voter@party.example", Username: "voter", PasswordHash: "x"}
	if err := store.CreateUser(voter); err != nil {
		t.Fatalf("create voter: %v", err)
	}

	edition := &db.Edition{Title: "Posadas Party 2026", Public: true, UploadedByID: admin.ID}
	if err := store.CreateEdition(edition); err != nil {
		t.Fatalf("create edition: %v", err)
	}
	compo := &db.Compo{Name: "Demo", CreatedByID: admin.ID}
	if err := store.CreateCompo(compo); err != nil {
		t.Fatalf("create compo: %v", err)
	}
	link := &db.HasCompo{EditionID: edition.ID, CompoID: compo.ID, Start: testNow, CreatedByID: admin.ID}
	if err := store.AttachCompo(link); err != nil {
		t.Fatalf("attach compo: %v", err)
	}
	production := &db.Production{
		Title:        "Starfield",
		Authors:      "Crew",
		EditionID:    edition.ID,
		CompoID:      compo.ID,
		UploadedByID: voter.ID,
	}
	if err := store.CreateProduction(production); err != nil {
		t.Fatalf("create production: %v", err)
	}

	return &fixture{
		svc:        svc,
		store:      store,
		admin:      admin,
		voter:      voter,
		edition:    edition,
		compo:      compo,
		production: production,
	}
}

func (f *fixture) saveConfig(t *testing.T, mode, access string, publicWeight, juryWeight int) *db.VotingConfiguration {
	t.Helper()
	config := &db.VotingConfiguration{
		EditionID:    f.edition.ID,
		VotingMode:   mode,
		AccessMode:   access,
		PublicWeight: publicWeight,
		JuryWeight:   juryWeight,
	}
	if err := f.svc.SaveConfig(config); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return config
}

func (f *fixture) openPeriod(t *testing.T, compoID *uint) *db.VotingPeriod {
	t.Helper()
	period := &db.VotingPeriod{
		EditionID: f.edition.ID,
		CompoID:   compoID,
		StartDate: testNow.Add(-time.Hour),
		EndDate:   testNow.Add(time.Hour),
		IsActive:  true,
	}
	if err := f.svc.CreatePeriod(period); err != nil {
		t.Fatalf("create period: %v", err)
	}
	return period
}

func (f *fixture) addUser(t *testing.T, email string) *db.User {
	t.Helper()
	user := &db.User{Email: email, Username: email, PasswordHash: "x"}
	if err := f.store.CreateUser(user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (f *fixture) addJuryMember(t *testing.T, userID uint, compoIDs ...uint) *db.JuryMember {
	t.Helper()
	member := &db.JuryMember{UserID: userID, EditionID: f.edition.ID}
	if err := f.store.CreateJuryMember(member, compoIDs); err != nil {
		t.Fatalf("create jury member: %v", err)
	}
	return member
}
