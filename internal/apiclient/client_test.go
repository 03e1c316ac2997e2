package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"properlytics/internal/valuation"
)

func TestPredictDecodesResult(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"price_min":   400000,
			"price_max":   450000,
			"shap_values": map[string]float64{"area": 8000},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewSession())
	result, err := c.Predict(context.Background(), valuation.KindFlat, map[string]any{"area": 50.0})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/predict/flat" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["area"] != 50.0 {
		t.Fatalf("body = %v", gotBody)
	}
	if result.PriceMin != 400000 || result.Attributions["area"] != 8000 {
		t.Fatalf("result = %+v", result)
	}
}

func TestErrorResponseCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Listing not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Listing(context.Background(), valuation.KindHouse, 7)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Status != 404 || apiErr.Detail != "Listing not found" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestLoginStoresTokenAndAuthorizesCalls(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"access_token": "tok123",
				"token_type":   "bearer",
				"role":         "admin",
			})
		case "/admin/listings":
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewEncoder(w).Encode([]map[string]any{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	session := NewSession()
	c := NewClient(srv.URL, session)
	if err := c.Login(context.Background(), "admin", "secret"); err != nil {
		t.Fatal(err)
	}
	if session.Token() != "tok123" || session.Role() != "admin" {
		t.Fatalf("session = %q/%q", session.Token(), session.Role())
	}

	if _, err := c.AdminListings(context.Background(), "all", "", nil); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestToggleVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/admin/listings/flat/3/verify" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "is_verified": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, NewSession())
	verified, err := c.ToggleVerify(context.Background(), "flat", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !verified {
		t.Fatal("expected is_verified=true")
	}
}

func TestListingsDecodeRawRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings/plots" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "price_offer": 150000, "city": "Radom"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	records, err := c.Listings(context.Background(), valuation.KindPlot)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["city"] != "Radom" {
		t.Fatalf("records = %v", records)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want valuation.Failure
	}{
		{"forbidden redirects", &APIError{Status: 403}, valuation.Failure{Redirect: 403}},
		{"server error redirects", &APIError{Status: 500, Detail: "boom"}, valuation.Failure{Redirect: 500}},
		{"unavailable redirects", &APIError{Status: 503}, valuation.Failure{Redirect: 503}},
		{"other status stays local", &APIError{Status: 422}, valuation.Failure{Message: "Błąd serwera: 422. Sprawdź dane."}},
		{"server detail shown verbatim", &APIError{Status: 422, Detail: "title is required"}, valuation.Failure{Message: "title is required"}},
		{"network error", errors.New("dial tcp: refused"), valuation.Failure{Message: "Nie można połączyć się z serwerem. Spróbuj ponownie później."}},
		{"nil error", nil, valuation.Failure{Message: "Wystąpił nieoczekiwany błąd aplikacji."}},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestClientImplementsPredictor(t *testing.T) {
	var _ valuation.Predictor = (*Client)(nil)
}
