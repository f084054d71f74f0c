// Package ridehail talks to the partner API of a ride-hailing platform and
// maps its trips onto calculator input.
package ridehail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/nurpe/ride-profit/internal/config"
)

const (
	DefaultLimit  = 50
	DefaultWindow = 30 * 24 * time.Hour

	maxErrorBody = 512
)

var Scopes = []string{"partner.trips", "partner.payments", "profile"}

var ErrNotConfigured = errors.New("ride-hailing credentials not configured")

// APIError is returned for any non-2xx answer.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ride-hailing api: status %d: %s", e.StatusCode, e.Body)
}

type Fare struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
}

// Trip is one entry of GET /partners/trips. Distance is in miles, fare amount
// in minor currency units.
type Trip struct {
	TripID    string  `json:"trip_id"`
	Status    string  `json:"status"`
	StartTime int64   `json:"start_time"`
	EndTime   int64   `json:"end_time"`
	Distance  float64 `json:"distance"`
	Fare      Fare    `json:"fare"`
}

type Profile struct {
	DriverID  string `json:"driver_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient prefers the server token; otherwise it runs the client
// credentials flow. Every request, token fetches included, is bounded by
// cfg.Timeout.
func NewClient(cfg config.RideHailConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	base := &http.Client{Timeout: cfg.Timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	var source oauth2.TokenSource
	if cfg.ServerToken != "" {
		source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.ServerToken, TokenType: "Bearer"})
	} else {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       Scopes,
		}
		source = cc.TokenSource(ctx)
	}

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Trips lists the driver's trips that started in [from, to].
func (c *Client) Trips(ctx context.Context, from, to time.Time, limit int) ([]Trip, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	query := url.Values{}
	query.Set("from_time", strconv.FormatInt(from.Unix(), 10))
	query.Set("to_time", strconv.FormatInt(to.Unix(), 10))
	query.Set("limit", strconv.Itoa(limit))

	var body struct {
		Trips []Trip `json:"trips"`
	}
	if err := c.get(ctx, "/partners/trips", query, &body); err != nil {
		return nil, err
	}
	if body.Trips == nil {
		return []Trip{}, nil
	}
	return body.Trips, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "/partners/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "pl-PL")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
