package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"properlytics/internal/auth"
	"properlytics/internal/listingstore"
	"properlytics/internal/logger"
)

type testEnv struct {
	srv   *httptest.Server
	store *listingstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := listingstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	hash, err := auth.HashPassword("tajne123")
	if err != nil {
		t.Fatal(err)
	}
	err = store.UpsertAdmin(context.Background(), &listingstore.AdminUser{
		Username: "admin", PasswordHash: hash, Role: "admin", IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	authn, err := auth.New("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(store, authn, logger.New("error")))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "tajne123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d body = %v", resp.StatusCode, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("no token in %v", body)
	}
	return token
}

func flatBody() map[string]any {
	return map[string]any{
		"title": "Kawalerka", "price_offer": 450000, "area": 32.0,
		"rooms": 1, "floor": 2, "totalFloors": 5, "year": 1998,
		"buildType": "block", "material": "brick", "heating": "district",
		"market": "secondary", "constructionStatus": "ready_to_use",
		"city": "Warszawa", "province": "Mazowieckie",
	}
}

func TestCreateListAndGetFlat(t *testing.T) {
	e := newTestEnv(t)

	resp, created := e.do(t, http.MethodPost, "/api/listings/flats", "", flatBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d body = %v", resp.StatusCode, created)
	}
	id := int64(created["id"].(float64))
	if id == 0 {
		t.Fatalf("created = %v", created)
	}

	resp, _ = e.do(t, http.MethodGet, "/api/listings/flats", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}

	resp, item := e.do(t, http.MethodGet, fmt.Sprintf("/api/listings/flats/%d", id), "", nil)
	if resp.StatusCode != http.StatusOK || item["title"] != "Kawalerka" {
		t.Fatalf("get status = %d item = %v", resp.StatusCode, item)
	}
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	e := newTestEnv(t)
	body := flatBody()
	delete(body, "title")
	resp, out := e.do(t, http.MethodPost, "/api/listings/flats", "", body)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body = %v", resp.StatusCode, out)
	}
}

func TestGetMissingListingReturnsDetail(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/listings/flats/999", "", nil)
	if resp.StatusCode != http.StatusNotFound || body["detail"] != "Listing not found" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestPublicPatchUpdatesOfferFields(t *testing.T) {
	e := newTestEnv(t)
	_, created := e.do(t, http.MethodPost, "/api/listings/flats", "", flatBody())
	id := int64(created["id"].(float64))

	resp, updated := e.do(t, http.MethodPatch, fmt.Sprintf("/api/listings/flats/%d", id), "", map[string]any{
		"price_offer": 480000,
		"area":        999, // structural, must be ignored
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d body = %v", resp.StatusCode, updated)
	}
	if updated["price_offer"] != 480000.0 {
		t.Fatalf("price_offer = %v", updated["price_offer"])
	}
	if updated["area"] != 32.0 {
		t.Fatalf("area changed: %v", updated["area"])
	}
}

func TestPublicDeleteSoftDeactivates(t *testing.T) {
	e := newTestEnv(t)
	_, created := e.do(t, http.MethodPost, "/api/listings/flats", "", flatBody())
	id := int64(created["id"].(float64))

	resp, _ := e.do(t, http.MethodDelete, fmt.Sprintf("/api/listings/flats/%d", id), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	// Still fetchable by id, just inactive.
	resp, item := e.do(t, http.MethodGet, fmt.Sprintf("/api/listings/flats/%d", id), "", nil)
	if resp.StatusCode != http.StatusOK || item["is_active"] != false {
		t.Fatalf("status = %d item = %v", resp.StatusCode, item)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodGet, "/admin/listings", "", nil)
	if resp.StatusCode != http.StatusUnauthorized || body["detail"] != "Not authenticated" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}

	resp, _ = e.do(t, http.MethodGet, "/admin/listings", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "zle",
	})
	if resp.StatusCode != http.StatusUnauthorized || body["detail"] != "Invalid username or password" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestAdminModerationFlow(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)

	_, created := e.do(t, http.MethodPost, "/api/listings/flats", "", flatBody())
	id := int64(created["id"].(float64))

	resp, out := e.do(t, http.MethodPatch, fmt.Sprintf("/admin/listings/flat/%d/verify", id), token, nil)
	if resp.StatusCode != http.StatusOK || out["is_verified"] != true {
		t.Fatalf("verify status = %d body = %v", resp.StatusCode, out)
	}

	resp, out = e.do(t, http.MethodPatch, fmt.Sprintf("/admin/listings/flat/%d/deactivate", id), token, nil)
	if resp.StatusCode != http.StatusOK || out["is_active"] != false {
		t.Fatalf("deactivate status = %d body = %v", resp.StatusCode, out)
	}

	resp, out = e.do(t, http.MethodPatch, fmt.Sprintf("/admin/listings/flat/%d", id), token, map[string]any{
		"price_offer": 480000, "area": 9999,
	})
	if resp.StatusCode != http.StatusOK || out["price_offer"] != 480000.0 {
		t.Fatalf("patch status = %d body = %v", resp.StatusCode, out)
	}
	if out["area"] != 32.0 {
		t.Fatalf("structural field changed: %v", out["area"])
	}

	resp, rows := e.do(t, http.MethodGet, "/admin/listings?type=flat&status=inactive", token, nil)
	_ = rows
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summaries status = %d", resp.StatusCode)
	}

	resp, out = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/listings/flat/%d", id), token, nil)
	if resp.StatusCode != http.StatusOK || out["status"] != "deleted" {
		t.Fatalf("delete status = %d body = %v", resp.StatusCode, out)
	}

	resp, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/listings/flats/%d", id), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d", resp.StatusCode)
	}
}

func TestAdminInvalidType(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)
	resp, body := e.do(t, http.MethodPatch, "/admin/listings/castle/1/verify", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestAuthMe(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)
	resp, body := e.do(t, http.MethodGet, "/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK || body["username"] != "admin" || body["role"] != "admin" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestDisabledAccountForbidden(t *testing.T) {
	e := newTestEnv(t)
	token := e.login(t)

	hash, _ := auth.HashPassword("tajne123")
	_ = e.store.UpsertAdmin(context.Background(), &listingstore.AdminUser{
		Username: "admin", PasswordHash: hash, Role: "admin", IsActive: false,
	})

	resp, body := e.do(t, http.MethodGet, "/admin/listings", token, nil)
	if resp.StatusCode != http.StatusForbidden || body["detail"] != "Account disabled" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.do(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}
