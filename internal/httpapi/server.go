// Package httpapi serves the listing backend: public listing CRUD, admin
// moderation routes, and token auth.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"properlytics/internal/auth"
	"properlytics/internal/listingstore"
	"properlytics/internal/logger"
)

type Server struct {
	store *listingstore.Store
	auth  *auth.Authenticator
	log   *logger.Logger
}

func NewServer(store *listingstore.Store, authn *auth.Authenticator, log *logger.Logger) http.Handler {
	s := &Server{store: store, auth: authn, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/listings/", s.handleListings)
	mux.HandleFunc("/admin/listings", s.handleAdminIndex)
	mux.HandleFunc("/admin/listings/", s.handleAdminItem)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/me", s.handleMe)
	mux.HandleFunc("/health", s.handleHealth)
	return traced(mux)
}

// statusWriter captures the response code for the request span.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// traced opens one server span per request.
func traced(next http.Handler) http.Handler {
	tracer := otel.Tracer("properlytics/httpapi")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", sw.status))
		if sw.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(sw.status))
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeDetail emits the backend's error envelope: {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeBody(r *http.Request, dst any) error {
	blob, err := io.ReadAll(io.LimitReader(r.Body, 2<<20))
	if err != nil {
		return err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return json.Unmarshal(blob, dst)
}

// pathTypes maps the public plural path segment to the storage type name.
var pathTypes = map[string]string{
	"flats":  "flat",
	"houses": "house",
	"plots":  "plot",
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/listings/"), "/")
	segs := strings.Split(rest, "/")

	typ, ok := pathTypes[segs[0]]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found")
		return
	}

	switch len(segs) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			s.listListings(w, r, typ)
		case http.MethodPost:
			s.createListing(w, r, typ)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 2:
		id, err := strconv.ParseInt(segs[1], 10, 64)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid listing id")
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.getListing(w, r, typ, id)
		case http.MethodPatch:
			s.updateListing(w, r, typ, id)
		case http.MethodDelete:
			s.deactivateListing(w, r, typ, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		writeDetail(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) listListings(w http.ResponseWriter, r *http.Request, typ string) {
	ctx := r.Context()
	var payload any
	var err error
	switch typ {
	case "flat":
		payload, err = s.store.ActiveFlats(ctx)
	case "house":
		payload, err = s.store.ActiveHouses(ctx)
	case "plot":
		payload, err = s.store.ActivePlots(ctx)
	}
	if err != nil {
		s.log.Error("list listings failed", "type", typ, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) createListing(w http.ResponseWriter, r *http.Request, typ string) {
	ctx := r.Context()
	var created any
	var err error
	switch typ {
	case "flat":
		var l listingstore.FlatListing
		if err := decodeBody(r, &l); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid listing body")
			return
		}
		if l.Title == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "title is required")
			return
		}
		_, err = s.store.CreateFlat(ctx, &l)
		created = l
	case "house":
		var l listingstore.HouseListing
		if err := decodeBody(r, &l); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid listing body")
			return
		}
		if l.Title == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "title is required")
			return
		}
		_, err = s.store.CreateHouse(ctx, &l)
		created = l
	case "plot":
		var l listingstore.PlotListing
		if err := decodeBody(r, &l); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid listing body")
			return
		}
		if l.Title == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "title is required")
			return
		}
		_, err = s.store.CreatePlot(ctx, &l)
		created = l
	}
	if err != nil {
		s.log.Error("create listing failed", "type", typ, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) getListing(w http.ResponseWriter, r *http.Request, typ string, id int64) {
	ctx := r.Context()
	var payload any
	var err error
	switch typ {
	case "flat":
		payload, err = s.store.GetFlat(ctx, id)
	case "house":
		payload, err = s.store.GetHouse(ctx, id)
	case "plot":
		payload, err = s.store.GetPlot(ctx, id)
	default:
		writeDetail(w, http.StatusBadRequest, "Invalid listing type: "+typ)
		return
	}
	if errors.Is(err, listingstore.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Listing not found")
		return
	}
	if err != nil {
		s.log.Error("get listing failed", "type", typ, "id", id, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// updateListing patches the offer fields of a listing. Structural feature
// columns are ignored, same as on the admin route.
func (s *Server) updateListing(w http.ResponseWriter, r *http.Request, typ string, id int64) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	if err := s.store.UpdateOffer(r.Context(), typ, id, fields); s.writeStoreError(w, err, typ) {
		return
	}
	s.getListing(w, r, typ, id)
}

// deactivateListing is the public DELETE: it soft-deactivates so the row stays
// available to the admin view.
func (s *Server) deactivateListing(w http.ResponseWriter, r *http.Request, typ string, id int64) {
	err := s.store.SetActive(r.Context(), typ, id, false)
	if errors.Is(err, listingstore.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Listing not found")
		return
	}
	if err != nil {
		s.log.Error("deactivate listing failed", "type", typ, "id", id, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- admin routes ---

// requireAdmin verifies the bearer token and checks that the account still
// exists, is active, and carries an admin role.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	token, ok := auth.FromAuthorizationHeader(r.Header.Get("Authorization"))
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return auth.Claims{}, false
	}
	claims, err := s.auth.VerifyToken(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return auth.Claims{}, false
	}
	account, err := s.store.AdminByUsername(r.Context(), claims.Username)
	if errors.Is(err, listingstore.ErrNotFound) {
		writeDetail(w, http.StatusUnauthorized, "Admin not found")
		return auth.Claims{}, false
	}
	if err != nil {
		s.log.Error("admin lookup failed", "username", claims.Username, "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return auth.Claims{}, false
	}
	if !account.IsActive {
		writeDetail(w, http.StatusForbidden, "Account disabled")
		return auth.Claims{}, false
	}
	if !auth.AdminRoles[account.Role] {
		writeDetail(w, http.StatusForbidden, "Insufficient permissions")
		return auth.Claims{}, false
	}
	return claims, true
}

func (s *Server) handleAdminIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	q := r.URL.Query()
	typ := q.Get("type")
	if typ == "" {
		typ = "all"
	}
	var verified *bool
	if raw := q.Get("is_verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid is_verified filter")
			return
		}
		verified = &v
	}

	rows, err := s.store.Summaries(r.Context(), typ, q.Get("status"), verified)
	if err != nil {
		if strings.Contains(err.Error(), "invalid listing type") {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("admin summaries failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAdminItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/listings/"), "/")
	segs := strings.Split(rest, "/")
	if len(segs) < 2 || len(segs) > 3 {
		writeDetail(w, http.StatusNotFound, "Not found")
		return
	}
	typ := segs[0]
	id, err := strconv.ParseInt(segs[1], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid listing id")
		return
	}

	if len(segs) == 3 {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch segs[2] {
		case "verify":
			verified, err := s.store.ToggleVerify(r.Context(), typ, id)
			if s.writeStoreError(w, err, typ) {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "is_verified": verified})
		case "deactivate":
			active, err := s.store.ToggleActive(r.Context(), typ, id)
			if s.writeStoreError(w, err, typ) {
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "is_active": active})
		default:
			writeDetail(w, http.StatusNotFound, "Not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getListing(w, r, typ, id)
	case http.MethodPatch:
		var fields map[string]any
		if err := decodeBody(r, &fields); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
			return
		}
		if err := s.store.UpdateOffer(r.Context(), typ, id, fields); s.writeStoreError(w, err, typ) {
			return
		}
		s.getListing(w, r, typ, id)
	case http.MethodDelete:
		if err := s.store.Delete(r.Context(), typ, id); s.writeStoreError(w, err, typ) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// writeStoreError maps store errors to responses; returns true if it wrote one.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, typ string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, listingstore.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Listing not found")
		return true
	}
	if strings.Contains(err.Error(), "invalid listing type") {
		writeDetail(w, http.StatusBadRequest, "Invalid listing type: "+typ)
		return true
	}
	s.log.Error("store operation failed", "type", typ, "err", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
	return true
}

// --- auth routes ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid login body")
		return
	}

	account, err := s.store.AdminByUsername(r.Context(), req.Username)
	if errors.Is(err, listingstore.ErrNotFound) {
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		s.log.Error("login lookup failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := auth.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !account.IsActive {
		writeDetail(w, http.StatusForbidden, "Account disabled")
		return
	}

	token, err := s.auth.IssueToken(account.Username, account.Role)
	if err != nil {
		s.log.Error("issue token failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.log.Info("admin login", "username", account.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
		"role":         account.Role,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	claims, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": claims.Username,
		"role":     claims.Role,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
