// Package backend is the HTTP client for the upstream sitespace API. The
// scheduler is a pure consumer: it fetches bookings and asset metadata and
// submits reschedules; storage, authorization, and conflict arbitration stay
// on the backend's side of this boundary.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
)

// APIError carries a non-2xx backend response; the message is surfaced to the
// user verbatim where possible.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchBookings returns the raw booking records for a project on one day.
func (c *Client) FetchBookings(ctx context.Context, projectKey string, day time.Time) ([]models.RawBooking, error) {
	endpoint := fmt.Sprintf("%s/api/v1/projects/%s/bookings?date=%s",
		c.baseURL, url.PathEscape(projectKey), day.Format("2006-01-02"))

	var bookings []models.RawBooking
	if err := c.getJSON(ctx, endpoint, &bookings); err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}
	return bookings, nil
}

// FetchAssets returns the project's asset metadata, including maintenance
// windows and status.
func (c *Client) FetchAssets(ctx context.Context, projectKey string) ([]models.Asset, error) {
	endpoint := fmt.Sprintf("%s/api/v1/projects/%s/assets", c.baseURL, url.PathEscape(projectKey))

	var assets []models.Asset
	if err := c.getJSON(ctx, endpoint, &assets); err != nil {
		return nil, fmt.Errorf("fetch assets: %w", err)
	}
	return assets, nil
}

// CommitReschedule submits new times for a booking. A 2xx with no body is a
// success; anything else becomes an APIError with the backend's message.
func (c *Client) CommitReschedule(ctx context.Context, bookingKey string, payload models.ReschedulePayload) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s/schedule", c.baseURL, url.PathEscape(bookingKey))

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal reschedule payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reschedule request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commit reschedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
}
