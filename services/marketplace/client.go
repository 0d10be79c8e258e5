package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clubvoice/config"
	"clubvoice/models"
)

// Client replicates bookings to the external booking marketplace.
type Client interface {
	// SyncBooking pushes the booking and returns the marketplace's
	// reference for it.
	SyncBooking(ctx context.Context, club *models.Club, b *models.Booking) (string, error)
	// CancelBooking removes a previously synced booking.
	CancelBooking(ctx context.Context, club *models.Club, b *models.Booking) error
}

// HTTPClient talks to the marketplace REST API.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		BaseURL: config.AppConfig.MarketplaceBaseURL,
		APIKey:  config.AppConfig.MarketplaceAPIKey,
		Client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type syncRequest struct {
	ClubID       string    `json:"club_id"`
	Resource     string    `json:"resource"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	CustomerName string    `json:"customer_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	ExternalRef  string    `json:"external_ref"`
}

type syncResponse struct {
	BookingID string `json:"booking_id"`
}

func (c *HTTPClient) SyncBooking(ctx context.Context, club *models.Club, b *models.Booking) (string, error) {
	payload, err := json.Marshal(syncRequest{
		ClubID:       club.MarketplaceClubID,
		Resource:     b.Resource,
		Start:        b.Start,
		End:          b.End,
		CustomerName: b.ContactName,
		Phone:        b.ContactPhone,
		ExternalRef:  b.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode marketplace booking: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/v1/bookings", payload)
	if err != nil {
		return "", err
	}
	var parsed syncResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode marketplace response: %w", err)
	}
	return parsed.BookingID, nil
}

func (c *HTTPClient) CancelBooking(ctx context.Context, club *models.Club, b *models.Booking) error {
	if b.MarketplaceRef == "" {
		return nil
	}
	_, err := c.do(ctx, http.MethodDelete, "/v1/bookings/"+b.MarketplaceRef, nil)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to build marketplace request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("marketplace returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
