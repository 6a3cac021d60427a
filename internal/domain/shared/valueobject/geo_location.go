package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// EarthRadiusKm is Earth's mean radius used by the haversine distance
const EarthRadiusKm = 6371.0

var (
	ErrLatitudeOutOfRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
)

// GeoLocation is a GPS point with an optional human-readable address.
// It is stored as a small JSON blob: {"lat":..,"lng":..,"address":..}.
type GeoLocation struct {
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Address   string     `json:"address,omitempty"`
	Pincode   string     `json:"pincode,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// GeoOption customises a GeoLocation at construction
type GeoOption func(*GeoLocation)

// WithAddress sets the display address
func WithAddress(address string) GeoOption {
	return func(g *GeoLocation) {
		g.Address = strings.TrimSpace(address)
	}
}

// WithPincode sets the postal pincode the point was resolved from
func WithPincode(pincode string) GeoOption {
	return func(g *GeoLocation) {
		g.Pincode = strings.TrimSpace(pincode)
	}
}

// WithTimestamp records when the point was observed
func WithTimestamp(t time.Time) GeoOption {
	return func(g *GeoLocation) {
		g.Timestamp = &t
	}
}

// NewGeoLocation validates the coordinates and builds a location
func NewGeoLocation(lat, lng float64, opts ...GeoOption) (GeoLocation, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoLocation{}, ErrLatitudeOutOfRange
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return GeoLocation{}, ErrLongitudeOutOfRange
	}
	g := GeoLocation{Lat: lat, Lng: lng}
	for _, opt := range opts {
		opt(&g)
	}
	return g, nil
}

// MustNewGeoLocation is NewGeoLocation for compile-time constants; panics on invalid input
func MustNewGeoLocation(lat, lng float64, opts ...GeoOption) GeoLocation {
	g, err := NewGeoLocation(lat, lng, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// DistanceKm returns the great-circle distance to other using the haversine formula
func (g GeoLocation) DistanceKm(other GeoLocation) float64 {
	const degToRad = math.Pi / 180
	dLat := (other.Lat - g.Lat) * degToRad
	dLng := (other.Lng - g.Lng) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(g.Lat*degToRad)*math.Cos(other.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Interpolate returns the point a fraction t (0..1) of the way from g to other
func (g GeoLocation) Interpolate(other GeoLocation, t float64) GeoLocation {
	return GeoLocation{
		Lat: g.Lat + (other.Lat-g.Lat)*t,
		Lng: g.Lng + (other.Lng-g.Lng)*t,
	}
}

// String renders the coordinates as "lat,lng"
func (g GeoLocation) String() string {
	return fmt.Sprintf("%.6f,%.6f", g.Lat, g.Lng)
}

// Value implements driver.Valuer, storing the location as JSON text
func (g GeoLocation) Value() (driver.Value, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON text or bytes
func (g *GeoLocation) Scan(value any) error {
	if value == nil {
		*g = GeoLocation{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into GeoLocation", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*g = GeoLocation{}
		return nil
	}
	return json.Unmarshal(data, g)
}

// ParseGeoLocation decodes a stored JSON blob; empty input yields nil
func ParseGeoLocation(raw string) (*GeoLocation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var g GeoLocation
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("failed to parse location JSON: %w", err)
	}
	return &g, nil
}
