// Package apiclient is the HTTP client for the valuation and listing backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"properlytics/internal/valuation"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	tracer  trace.Tracer
}

// NewClient builds a client against baseURL. session may be nil for
// anonymous-only use.
func NewClient(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		session: session,
		tracer:  otel.Tracer("properlytics/apiclient"),
	}
}

func (c *Client) Session() *Session { return c.session }

// doJSON performs one request and returns the body. A non-2xx response comes
// back as *APIError with the backend's detail message when present.
func (c *Client) doJSON(ctx context.Context, method, path string, payload []byte, authed bool) ([]byte, int, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}
	defer resp.Body.Close()
	blob, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(blob, &body); err == nil {
			apiErr.Detail = body.Detail
		}
		span.SetStatus(codes.Error, apiErr.Error())
		return blob, resp.StatusCode, apiErr
	}
	return blob, resp.StatusCode, nil
}

// Predict submits the numeric-coerced form payload for one property kind.
func (c *Client) Predict(ctx context.Context, kind valuation.Kind, payload map[string]any) (*valuation.PredictionResult, error) {
	body, _ := json.Marshal(payload)
	out, _, err := c.doJSON(ctx, http.MethodPost, "/predict/"+string(kind), body, false)
	if err != nil {
		return nil, err
	}
	var result valuation.PredictionResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	return &result, nil
}

// Listings returns the raw active listing records for one kind. Records keep
// their backend shape; callers normalize via the listing package.
func (c *Client) Listings(ctx context.Context, kind valuation.Kind) ([]map[string]any, error) {
	out, _, err := c.doJSON(ctx, http.MethodGet, "/api/listings/"+kind.ListingPath(), nil, false)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return records, nil
}

// Listing returns one raw listing record.
func (c *Client) Listing(ctx context.Context, kind valuation.Kind, id int64) (map[string]any, error) {
	path := fmt.Sprintf("/api/listings/%s/%d", kind.ListingPath(), id)
	out, _, err := c.doJSON(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(out, &record); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return record, nil
}

// PublishListing creates a listing from the property features plus the offer
// fields and returns the created record, id included.
func (c *Client) PublishListing(ctx context.Context, kind valuation.Kind, record map[string]any) (map[string]any, error) {
	body, _ := json.Marshal(record)
	out, _, err := c.doJSON(ctx, http.MethodPost, "/api/listings/"+kind.ListingPath(), body, true)
	if err != nil {
		return nil, err
	}
	var created map[string]any
	if err := json.Unmarshal(out, &created); err != nil {
		return nil, fmt.Errorf("decode created listing: %w", err)
	}
	return created, nil
}

// Login exchanges credentials for a bearer token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	out, _, err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return err
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Role        string `json:"role"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return fmt.Errorf("missing access_token in response")
	}
	if c.session != nil {
		c.session.Set(resp.AccessToken, resp.Role)
	}
	return nil
}

// AdminListings returns the cross-kind summary rows, optionally filtered.
// typ is flat, house, plot, or all; status is active, inactive, or empty.
func (c *Client) AdminListings(ctx context.Context, typ, status string, verified *bool) ([]map[string]any, error) {
	q := url.Values{}
	if typ != "" {
		q.Set("type", typ)
	}
	if status != "" {
		q.Set("status", status)
	}
	if verified != nil {
		q.Set("is_verified", fmt.Sprintf("%t", *verified))
	}
	path := "/admin/listings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	out, _, err := c.doJSON(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(out, &rows); err != nil {
		return nil, fmt.Errorf("decode admin listings: %w", err)
	}
	return rows, nil
}

// ToggleVerify flips a listing's verification flag and returns the new value.
func (c *Client) ToggleVerify(ctx context.Context, typ string, id int64) (bool, error) {
	path := fmt.Sprintf("/admin/listings/%s/%d/verify", typ, id)
	out, _, err := c.doJSON(ctx, http.MethodPatch, path, nil, true)
	if err != nil {
		return false, err
	}
	var resp struct {
		IsVerified bool `json:"is_verified"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return false, fmt.Errorf("decode verify response: %w", err)
	}
	return resp.IsVerified, nil
}

// ToggleActive flips a listing's active flag and returns the new value.
func (c *Client) ToggleActive(ctx context.Context, typ string, id int64) (bool, error) {
	path := fmt.Sprintf("/admin/listings/%s/%d/deactivate", typ, id)
	out, _, err := c.doJSON(ctx, http.MethodPatch, path, nil, true)
	if err != nil {
		return false, err
	}
	var resp struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return false, fmt.Errorf("decode deactivate response: %w", err)
	}
	return resp.IsActive, nil
}

// DeleteListing permanently removes a listing.
func (c *Client) DeleteListing(ctx context.Context, typ string, id int64) error {
	path := fmt.Sprintf("/admin/listings/%s/%d", typ, id)
	_, _, err := c.doJSON(ctx, http.MethodDelete, path, nil, true)
	return err
}

// UpdateListing patches the allowed offer fields of a listing.
func (c *Client) UpdateListing(ctx context.Context, typ string, id int64, fields map[string]any) (map[string]any, error) {
	body, _ := json.Marshal(fields)
	path := fmt.Sprintf("/admin/listings/%s/%d", typ, id)
	out, _, err := c.doJSON(ctx, http.MethodPatch, path, body, true)
	if err != nil {
		return nil, err
	}
	var updated map[string]any
	if err := json.Unmarshal(out, &updated); err != nil {
		return nil, fmt.Errorf("decode updated listing: %w", err)
	}
	return updated, nil
}
