package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"foodshare/internal/adapter/repo"
	"foodshare/internal/domain"
	"foodshare/internal/lifecycle"
	"foodshare/internal/middleware"
	"foodshare/internal/possession"
)

var testClock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *App {
	t.Helper()
	issuer, err := possession.NewIssuer("handler-test-secret")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	svc := lifecycle.NewService(repo.NewMemoryRepository(), issuer, zerolog.Nop()).
		WithClock(func() time.Time { return testClock })
	app := NewApp(svc, nil, nil, zerolog.Nop())
	app.Now = func() time.Time { return testClock }
	return app
}

func actorRequest(method, target string, body []byte, actor domain.Actor) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.ContextWithActor(req.Context(), actor))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func createPayload() []byte {
	body, _ := json.Marshal(map[string]any{
		"title":      "Veg meals",
		"quantity":   10,
		"type":       "veg",
		"made_at":    testClock.Add(-time.Hour),
		"expires_at": testClock.Add(6 * time.Hour),
		"pin_code":   "560001",
		"zone":       "A",
	})
	return body
}

func createDonation(t *testing.T, app *App, donor domain.Actor) donationResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, actorRequest("POST", "/donations", createPayload(), donor))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got status %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	var resp donationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestDonationsCreateReturnsPossessionToken(t *testing.T) {
	app := newTestApp(t)
	donor := domain.Actor{ID: "donor-1", Role: domain.RoleDonor}

	resp := createDonation(t, app, donor)

	if resp.Token == "" {
		t.Fatal("expected possession token in create response")
	}
	if resp.Status != "available" {
		t.Fatalf("expected status available, got %q", resp.Status)
	}
	if resp.DonorID != donor.ID {
		t.Fatalf("expected donor_id %q, got %q", donor.ID, resp.DonorID)
	}
	if resp.IsUrgent {
		t.Fatal("a 6h window should not be flagged urgent")
	}
}

func TestDonationsCreateRejectsMissingTitle(t *testing.T) {
	app := newTestApp(t)
	body, _ := json.Marshal(map[string]any{
		"quantity":   5,
		"type":       "veg",
		"made_at":    testClock,
		"expires_at": testClock.Add(time.Hour),
		"pin_code":   "560001",
	})

	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, actorRequest("POST", "/donations", body, domain.Actor{ID: "donor-1", Role: domain.RoleDonor}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != "bad_request" {
		t.Fatalf("expected error code bad_request, got %#v", payload["error"])
	}
}

func TestDonationsCreateRequiresActor(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest("POST", "/donations", bytes.NewReader(createPayload()))

	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rr.Code)
	}
}

func TestDonationsAvailableRedactsToken(t *testing.T) {
	app := newTestApp(t)
	createDonation(t, app, domain.Actor{ID: "donor-1", Role: domain.RoleDonor})

	req := actorRequest("GET", "/donations/available?pin=560001", nil, domain.Actor{ID: "org-1", Role: domain.RoleOrg})
	rr := httptest.NewRecorder()
	app.DonationsAvailable(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(payload.Items))
	}
	if _, ok := payload.Items[0]["token"]; ok {
		t.Fatal("listing must not expose the possession token")
	}
}

func TestDonationsAvailableRequiresPin(t *testing.T) {
	app := newTestApp(t)
	req := actorRequest("GET", "/donations/available", nil, domain.Actor{ID: "org-1", Role: domain.RoleOrg})

	rr := httptest.NewRecorder()
	app.DonationsAvailable(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rr.Code)
	}
}

func TestDonationsAcceptForbiddenRoleListsAllowed(t *testing.T) {
	app := newTestApp(t)
	d := createDonation(t, app, domain.Actor{ID: "donor-1", Role: domain.RoleDonor})

	req := actorRequest("POST", "/donations/"+d.ID+"/accept", nil, domain.Actor{ID: "courier-1", Role: domain.RoleCourier})
	req = withURLParam(req, "id", d.ID)
	rr := httptest.NewRecorder()
	app.DonationsAccept(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["role"] != "courier" {
		t.Fatalf("expected offending role courier, got %#v", payload["role"])
	}
	allowed, ok := payload["allowed_roles"].([]any)
	if !ok || len(allowed) != 1 || allowed[0] != "org" {
		t.Fatalf("expected allowed_roles [org], got %#v", payload["allowed_roles"])
	}
}

func TestDonationsConfirmWrongTokenRejected(t *testing.T) {
	app := newTestApp(t)
	donor := domain.Actor{ID: "donor-1", Role: domain.RoleDonor}
	org := domain.Actor{ID: "org-1", Role: domain.RoleOrg}
	d := createDonation(t, app, donor)

	body, _ := json.Marshal(map[string]string{"token": "not-the-token"})
	req := withURLParam(actorRequest("POST", "/donations/"+d.ID+"/confirm", body, org), "id", d.ID)
	rr := httptest.NewRecorder()
	app.DonationsConfirm(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != "invalid_token" {
		t.Fatalf("expected error code invalid_token, got %#v", payload["error"])
	}

	// The record must be untouched by the failed confirmation.
	fresh, err := app.Lifecycle.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("get donation: %v", err)
	}
	if fresh.Status != domain.StatusAvailable {
		t.Fatalf("expected status available after rejected confirm, got %q", fresh.Status)
	}
}

func TestDonationsConfirmWithTokenCompletes(t *testing.T) {
	app := newTestApp(t)
	donor := domain.Actor{ID: "donor-1", Role: domain.RoleDonor}
	org := domain.Actor{ID: "org-1", Role: domain.RoleOrg}
	d := createDonation(t, app, donor)

	acceptReq := withURLParam(actorRequest("POST", "/donations/"+d.ID+"/accept", nil, org), "id", d.ID)
	rr := httptest.NewRecorder()
	app.DonationsAccept(rr, acceptReq)
	if rr.Code != http.StatusOK {
		t.Fatalf("accept: got status %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	body, _ := json.Marshal(map[string]string{"token": d.Token})
	confirmReq := withURLParam(actorRequest("POST", "/donations/"+d.ID+"/confirm", body, org), "id", d.ID)
	rr = httptest.NewRecorder()
	app.DonationsConfirm(rr, confirmReq)

	if rr.Code != http.StatusOK {
		t.Fatalf("confirm: got status %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var resp donationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("expected status completed, got %q", resp.Status)
	}
	if resp.Token != "" {
		t.Fatal("confirm response must not echo the possession token")
	}
}

func TestDonationsMineIncludesTokenForDonor(t *testing.T) {
	app := newTestApp(t)
	donor := domain.Actor{ID: "donor-1", Role: domain.RoleDonor}
	createDonation(t, app, donor)

	req := actorRequest("GET", "/donations/mine", nil, donor)
	rr := httptest.NewRecorder()
	app.DonationsMine(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rr.Code)
	}
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(payload.Items))
	}
	token, _ := payload.Items[0]["token"].(string)
	if token == "" {
		t.Fatal("donor listing should carry the possession token")
	}
}

func TestDonationsDeleteUnknownIDNotFound(t *testing.T) {
	app := newTestApp(t)
	req := withURLParam(actorRequest("DELETE", "/donations/missing", nil, domain.Actor{ID: "donor-1", Role: domain.RoleDonor}), "id", "missing")

	rr := httptest.NewRecorder()
	app.DonationsDelete(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rr.Code)
	}
}
