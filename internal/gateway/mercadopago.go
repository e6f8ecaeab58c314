package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// PreferenceRequest describes the checkout the provider should host.
type PreferenceRequest struct {
	OrderID string
	Items   []PreferenceItem

	SuccessURL string
	FailureURL string
	PendingURL string
	WebhookURL string
}

type PreferenceItem struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Preference is the provider's handle for a hosted checkout session.
type Preference struct {
	ID          string
	RedirectURL string
}

// Client talks to the Mercado Pago preferences API. Calls go through a
// circuit breaker so a degraded provider fails fast instead of tying up
// request handlers.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[*Preference]
}

func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*Preference](gobreaker.Settings{
			Name:    "mercadopago",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type preferencePayload struct {
	Items             []preferenceItemPayload `json:"items"`
	ExternalReference string                  `json:"external_reference"`
	BackURLs          backURLsPayload         `json:"back_urls"`
	AutoReturn        string                  `json:"auto_return"`
	NotificationURL   string                  `json:"notification_url,omitempty"`
}

type preferenceItemPayload struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type backURLsPayload struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type providerError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// CreatePreference registers a checkout preference with the provider and
// returns its id and redirect URL. The order id travels as the external
// reference so webhook notifications can be correlated back.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	return c.breaker.Execute(func() (*Preference, error) {
		return c.createPreference(ctx, req)
	})
}

func (c *Client) createPreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	payload := preferencePayload{
		ExternalReference: req.OrderID,
		AutoReturn:        "approved",
		NotificationURL:   req.WebhookURL,
		BackURLs: backURLsPayload{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
	}
	for _, item := range req.Items {
		price, _ := item.UnitPrice.Round(2).Float64()
		payload.Items = append(payload.Items, preferenceItemPayload{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  price,
			CurrencyID: "ARS",
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment provider request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var provErr providerError
		if json.Unmarshal(respBody, &provErr) == nil && provErr.Message != "" {
			return nil, fmt.Errorf("payment provider rejected preference: %s (status %d)", provErr.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var pref preferenceResponse
	if err := json.Unmarshal(respBody, &pref); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if pref.ID == "" {
		return nil, fmt.Errorf("payment provider returned empty preference id")
	}

	return &Preference{ID: pref.ID, RedirectURL: pref.InitPoint}, nil
}
