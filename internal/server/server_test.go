package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FreeMEM/DPMS/internal/auth"
	"github.com/FreeMEM/DPMS/internal/config"
	"github.com/FreeMEM/DPMS/internal/db"
	"github.com/FreeMEM/DPMS/internal/voting"
)

var testNow = time.Date(2026, 4, 3, 20, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store := db.NewMemStore()
	cfg := config.Default()
	votes := voting.NewService(store, cfg.CodeBatchMax, cfg.VoteCommentMaxLength)
	votes.Now = func() time.Time { return testNow }
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	srv := New(store, votes, tokens, cfg, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// registerAndLogin creates an account through the API and returns its
// bearer token and user id.
func registerAndLogin(t *testing.T, ts *httptest.Server, email string) (string, uint) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"username": email,
		"password": "sceners4ever",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	var user db.User
	decodeBody(t, resp, &user)

	resp = doRequest(t, ts, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "sceners4ever",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatalf("login returned empty token")
	}
	return login.Token, user.ID
}

// loginAsAdmin registers a user and issues a token carrying the admin
// claim, standing in for an account promoted out of band.
func loginAsAdmin(t *testing.T, srv *Server, ts *httptest.Server, email string) (string, uint) {
	t.Helper()
	_, userID := registerAndLogin(t, ts, email)
	token, err := srv.tokens.Issue(userID, email, true, testNow)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	return token, userID
}

// seedEdition drives the admin API to create an edition with one
// scheduled compo and returns both ids.
func seedEdition(t *testing.T, ts *httptest.Server, adminToken string) (uint, uint) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/editions", adminToken, map[string]any{
		"title":  "Posadas Party 2026",
		"public": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create edition: expected 201, got %d", resp.StatusCode)
	}
	var edition db.Edition
	decodeBody(t, resp, &edition)

	resp = doRequest(t, ts, http.MethodPost, "/api/compos", adminToken, map[string]any{
		"name": "Demo",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create compo: expected 201, got %d", resp.StatusCode)
	}
	var compo db.Compo
	decodeBody(t, resp, &compo)

	resp = doRequest(t, ts, http.MethodPost, "/api/editions/"+itoa(edition.ID)+"/compos", adminToken, map[string]any{
		"compo_id": compo.ID,
		"start":    testNow,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("attach compo: expected 201, got %d", resp.StatusCode)
	}
	return edition.ID, compo.ID
}

// openVoting saves a public/open voting configuration and an open
// period for the edition.
func openVoting(t *testing.T, ts *httptest.Server, adminToken string, editionID uint) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/voting-config", adminToken, map[string]any{
		"edition_id":  editionID,
		"voting_mode": "public",
		"access_mode": "open",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save config: expected 200, got %d", resp.StatusCode)
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/voting-periods", adminToken, map[string]any{
		"edition_id": editionID,
		"start_date": testNow.Add(-time.Hour),
		"end_date":   testNow.Add(time.Hour),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create period: expected 201, got %d", resp.StatusCode)
	}
}

func createProduction(t *testing.T, ts *httptest.Server, token string, editionID, compoID uint) uint {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/productions", token, map[string]any{
		"title":      "Starfield",
		"authors":    "Crew",
		"edition_id": editionID,
		"compo_id":   compoID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create production: expected 201, got %d", resp.StatusCode)
	}
	var production db.Production
	decodeBody(t, resp, &production)
	return production.ID
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
