package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clubvoice/config"
	"clubvoice/models"
)

// ProviderError is a non-2xx response from the SMS provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("sms provider returned %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the rejection is worth retrying. Server
// errors, timeouts and rate limits are; other 4xx responses (invalid
// number, bad request) are final.
func (e *ProviderError) Transient() bool {
	switch {
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// HTTPSender delivers SMS through the provider's REST API.
type HTTPSender struct {
	BaseURL string
	APIKey  string
	From    string
	Client  *http.Client
}

func NewHTTPSender() *HTTPSender {
	return &HTTPSender{
		BaseURL: config.AppConfig.SMSBaseURL,
		APIKey:  config.AppConfig.SMSAPIKey,
		From:    config.AppConfig.SMSFromNumber,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type smsResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *HTTPSender) Send(ctx context.Context, to, body string) (SendResult, error) {
	form := url.Values{}
	form.Set("from", s.From)
	form.Set("to", to)
	form.Set("message", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/sms", strings.NewReader(form.Encode()))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SendResult{}, &ProviderError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var parsed smsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Accepted but unparseable; treat as sent with no reference.
		return SendResult{Status: models.NotificationSent}, nil
	}
	res := SendResult{Status: models.NotificationSent, ProviderRef: parsed.ID}
	if parsed.Status == "delivered" {
		res.Status = models.NotificationDelivered
	}
	return res, nil
}
