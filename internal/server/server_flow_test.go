package server

import (
	"encoding/csv"
	"net/http"
	"testing"

	"github.com/FreeMEM/DPMS/internal/db"
)

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/api/editions", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/editions", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestAdminRequired(t *testing.T) {
	_, ts := newTestServer(t)
	token, _ := registerAndLogin(t, ts, "scener@party.example")

	resp := doRequest(t, ts, http.MethodPost, "/api/editions", token, map[string]any{
		"title": "Sneaky Party",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, ts := newTestServer(t)
	registerAndLogin(t, ts, "scener@party.example")

	resp := doRequest(t, ts, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    "scener@party.example",
		"username": "again",
		"password": "sceners4ever",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLoginBadPassword(t *testing.T) {
	_, ts := newTestServer(t)
	registerAndLogin(t, ts, "scener@party.example")

	resp := doRequest(t, ts, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "scener@party.example",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestVoteFlow(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	voterToken, _ := registerAndLogin(t, ts, "voter@party.example")

	editionID, compoID := seedEdition(t, ts, adminToken)
	openVoting(t, ts, adminToken, editionID)
	productionID := createProduction(t, ts, voterToken, editionID, compoID)

	resp := doRequest(t, ts, http.MethodPost, "/api/votes", voterToken, map[string]any{
		"production_id": productionID,
		"score":         8,
		"comment":       "lovely plasma",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cast vote: expected 200, got %d", resp.StatusCode)
	}
	var vote db.Vote
	decodeBody(t, resp, &vote)
	if vote.Score != 8 || vote.IsJuryVote {
		t.Fatalf("unexpected vote: %+v", vote)
	}

	// Re-voting updates in place.
	resp = doRequest(t, ts, http.MethodPost, "/api/votes", voterToken, map[string]any{
		"production_id": productionID,
		"score":         9,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-vote: expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/votes/mine", voterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("my votes: expected 200, got %d", resp.StatusCode)
	}
	var votes []db.Vote
	decodeBody(t, resp, &votes)
	if len(votes) != 1 || votes[0].Score != 9 {
		t.Fatalf("unexpected votes: %+v", votes)
	}
}

func TestVoteValidationOverHTTP(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	voterToken, _ := registerAndLogin(t, ts, "voter@party.example")

	editionID, compoID := seedEdition(t, ts, adminToken)
	productionID := createProduction(t, ts, voterToken, editionID, compoID)

	// Score outside 1..10 is rejected by binding.
	resp := doRequest(t, ts, http.MethodPost, "/api/votes", voterToken, map[string]any{
		"production_id": productionID,
		"score":         11,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for score 11, got %d", resp.StatusCode)
	}

	// No configuration yet.
	resp = doRequest(t, ts, http.MethodPost, "/api/votes", voterToken, map[string]any{
		"production_id": productionID,
		"score":         5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without configuration, got %d", resp.StatusCode)
	}
	var body struct {
		Kind string `json:"kind"`
	}
	decodeBody(t, resp, &body)
	if body.Kind != "configuration_missing" {
		t.Fatalf("expected configuration_missing kind, got %q", body.Kind)
	}
}

func TestResultsPublicationGate(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	voterToken, _ := registerAndLogin(t, ts, "voter@party.example")

	editionID, compoID := seedEdition(t, ts, adminToken)
	openVoting(t, ts, adminToken, editionID)
	productionID := createProduction(t, ts, voterToken, editionID, compoID)

	doRequest(t, ts, http.MethodPost, "/api/votes", voterToken, map[string]any{
		"production_id": productionID,
		"score":         8,
	})

	resp := doRequest(t, ts, http.MethodGet, "/api/results?edition="+itoa(editionID), voterToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before publication, got %d", resp.StatusCode)
	}
	// Admins see unpublished results.
	resp = doRequest(t, ts, http.MethodGet, "/api/results?edition="+itoa(editionID), adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin results: expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/voting-config/"+itoa(editionID)+"/publish", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish: expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/results?edition="+itoa(editionID), voterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("published results: expected 200, got %d", resp.StatusCode)
	}
	var results struct {
		ByCompo []struct {
			Entries []struct {
				ProductionID uint    `json:"production_id"`
				FinalScore   float64 `json:"final_score"`
				Rank         int     `json:"rank"`
			} `json:"entries"`
		} `json:"results_by_compo"`
	}
	decodeBody(t, resp, &results)
	if len(results.ByCompo) != 1 || len(results.ByCompo[0].Entries) != 1 {
		t.Fatalf("unexpected results shape: %+v", results)
	}
	entry := results.ByCompo[0].Entries[0]
	if entry.ProductionID != productionID || entry.FinalScore != 8.0 || entry.Rank != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestAttendanceCodeFlow(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	voterToken, _ := registerAndLogin(t, ts, "voter@party.example")

	editionID, _ := seedEdition(t, ts, adminToken)

	resp := doRequest(t, ts, http.MethodPost, "/api/attendance-codes/generate", adminToken, map[string]any{
		"edition_id": editionID,
		"quantity":   5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("generate: expected 201, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/attendance-codes?edition="+itoa(editionID), adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list codes: expected 200, got %d", resp.StatusCode)
	}
	var codes []db.AttendanceCode
	decodeBody(t, resp, &codes)
	if len(codes) != 5 {
		t.Fatalf("expected 5 codes, got %d", len(codes))
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/attendance-codes/redeem", voterToken, map[string]any{
		"code": codes[0].Code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("redeem: expected 200, got %d", resp.StatusCode)
	}

	// Second redemption conflicts.
	otherToken, _ := registerAndLogin(t, ts, "other@party.example")
	resp = doRequest(t, ts, http.MethodPost, "/api/attendance-codes/redeem", otherToken, map[string]any{
		"code": codes[0].Code,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on reuse, got %d", resp.StatusCode)
	}

	// Unknown codes are 404.
	resp = doRequest(t, ts, http.MethodPost, "/api/attendance-codes/redeem", voterToken, map[string]any{
		"code": "NOPE-XXXX-YYYY",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", resp.StatusCode)
	}

	// The verification shows up for admins.
	resp = doRequest(t, ts, http.MethodGet, "/api/attendee-verifications?edition="+itoa(editionID), adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list verifications: expected 200, got %d", resp.StatusCode)
	}
	var verifications []db.AttendeeVerification
	decodeBody(t, resp, &verifications)
	if len(verifications) != 1 || !verifications[0].IsVerified {
		t.Fatalf("unexpected verifications: %+v", verifications)
	}
}

func TestExportCodesCSV(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	editionID, _ := seedEdition(t, ts, adminToken)

	doRequest(t, ts, http.MethodPost, "/api/attendance-codes/generate", adminToken, map[string]any{
		"edition_id": editionID,
		"quantity":   3,
	})

	resp := doRequest(t, ts, http.MethodGet, "/api/attendance-codes/export?edition="+itoa(editionID), adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(records))
	}
	if records[0][0] != "code" {
		t.Fatalf("unexpected header: %v", records[0])
	}
}

func TestCodeQR(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	editionID, _ := seedEdition(t, ts, adminToken)

	doRequest(t, ts, http.MethodPost, "/api/attendance-codes/generate", adminToken, map[string]any{
		"edition_id": editionID,
		"quantity":   1,
	})
	resp := doRequest(t, ts, http.MethodGet, "/api/attendance-codes?edition="+itoa(editionID), adminToken, nil)
	var codes []db.AttendanceCode
	decodeBody(t, resp, &codes)

	resp = doRequest(t, ts, http.MethodGet, "/api/attendance-codes/qr/"+itoa(codes[0].ID), adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
}

func TestJuryProgressAccess(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	jurorToken, jurorID := registerAndLogin(t, ts, "juror@party.example")
	nosyToken, _ := registerAndLogin(t, ts, "nosy@party.example")

	editionID, compoID := seedEdition(t, ts, adminToken)
	openVoting(t, ts, adminToken, editionID)
	createProduction(t, ts, jurorToken, editionID, compoID)

	resp := doRequest(t, ts, http.MethodPost, "/api/jury-members", adminToken, map[string]any{
		"user_id":    jurorID,
		"edition_id": editionID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create jury member: expected 201, got %d", resp.StatusCode)
	}
	var member db.JuryMember
	decodeBody(t, resp, &member)

	resp = doRequest(t, ts, http.MethodGet, "/api/jury-members/"+itoa(member.ID)+"/progress", jurorToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own progress: expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/jury-members/"+itoa(member.ID)+"/progress", nosyToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign progress: expected 403, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/jury-members/"+itoa(member.ID)+"/progress", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin progress: expected 200, got %d", resp.StatusCode)
	}
}

func TestProductionFileAttachment(t *testing.T) {
	srv, ts := newTestServer(t)
	adminToken, _ := loginAsAdmin(t, srv, ts, "orga@party.example")
	ownerToken, _ := registerAndLogin(t, ts, "owner@party.example")
	strangerToken, _ := registerAndLogin(t, ts, "stranger@party.example")

	editionID, compoID := seedEdition(t, ts, adminToken)
	productionID := createProduction(t, ts, ownerToken, editionID, compoID)

	resp := doRequest(t, ts, http.MethodPost, "/api/files", ownerToken, map[string]any{
		"title":             "Final version",
		"original_filename": "starfield.zip",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create file: expected 201, got %d", resp.StatusCode)
	}
	var file db.File
	decodeBody(t, resp, &file)
	if file.StoredName == "" || file.StoredName == "starfield.zip" {
		t.Fatalf("expected generated stored name, got %q", file.StoredName)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/productions/"+itoa(productionID)+"/files", strangerToken, map[string]any{
		"file_id": file.ID,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger attach: expected 403, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/productions/"+itoa(productionID)+"/files", ownerToken, map[string]any{
		"file_id": file.ID,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner attach: expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/productions/"+itoa(productionID)+"/files", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list files: expected 200, got %d", resp.StatusCode)
	}
	var files []db.File
	decodeBody(t, resp, &files)
	if len(files) != 1 || files[0].ID != file.ID {
		t.Fatalf("unexpected files: %+v", files)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp := doRequest(t, ts, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
