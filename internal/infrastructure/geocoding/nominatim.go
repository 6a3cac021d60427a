// Package geocoding resolves Indian postal codes into coordinates through
// the OpenStreetMap Nominatim search API.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	apporder "github.com/sudharshini/backend/internal/application/order"
	"github.com/sudharshini/backend/internal/infrastructure/config"
)

// Fallback is the approximate center of India, returned with Success false
// whenever a pincode cannot be resolved
var Fallback = apporder.GeocodeResult{Lat: 20.5937, Lng: 78.9629, Address: "India"}

const maxAttempts = 3

// NominatimGeocoder implements the order Geocoder port
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	backoff   func() backoff.BackOff
	logger    *zap.Logger
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder creates a geocoder from the geocoding section
func NewNominatimGeocoder(cfg config.GeocodingConfig, logger *zap.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return b
		},
		logger: logger,
	}
}

// GeocodePincode looks up "<pincode>, <country>". No match yields Fallback
// without error; transport failures yield Fallback and the error.
func (g *NominatimGeocoder) GeocodePincode(ctx context.Context, pincode, country string) (apporder.GeocodeResult, error) {
	pincode = strings.TrimSpace(pincode)
	if pincode == "" {
		return Fallback, nil
	}
	if country == "" {
		country = apporder.DefaultCountry
	}

	hits, err := backoff.Retry(ctx, func() ([]searchHit, error) {
		return g.search(ctx, pincode+", "+country)
	}, backoff.WithBackOff(g.backoff()), backoff.WithMaxTries(maxAttempts))
	if err != nil {
		return Fallback, err
	}
	if len(hits) == 0 {
		return Fallback, nil
	}

	lat, latErr := strconv.ParseFloat(hits[0].Lat, 64)
	lng, lngErr := strconv.ParseFloat(hits[0].Lon, 64)
	if latErr != nil || lngErr != nil {
		return Fallback, fmt.Errorf("nominatim returned unparsable coordinates %q,%q", hits[0].Lat, hits[0].Lon)
	}
	return apporder.GeocodeResult{Lat: lat, Lng: lng, Address: hits[0].DisplayName, Success: true}, nil
}

// search runs one request. 429 and 5xx are retried; other failures are permanent.
func (g *NominatimGeocoder) search(ctx context.Context, query string) ([]searchHit, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		g.logger.Debug("nominatim busy, retrying", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("nominatim returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("nominatim returned %d", resp.StatusCode))
	}

	var hits []searchHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode nominatim response: %w", err))
	}
	return hits, nil
}

// DisabledGeocoder always answers with Fallback
type DisabledGeocoder struct{}

// GeocodePincode implements the order Geocoder port
func (DisabledGeocoder) GeocodePincode(context.Context, string, string) (apporder.GeocodeResult, error) {
	return Fallback, nil
}

// New returns a Nominatim geocoder when enabled, DisabledGeocoder otherwise
func New(cfg config.GeocodingConfig, logger *zap.Logger) apporder.Geocoder {
	if !cfg.Enabled {
		return DisabledGeocoder{}
	}
	return NewNominatimGeocoder(cfg, logger)
}
