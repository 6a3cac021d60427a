package order

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
)

// Route simulation parameters
const (
	RoutePoints   = 11
	RouteJitter   = 0.001
	RouteInterval = 3 * time.Minute
	RouteLookBack = 30 * time.Minute
)

// LocationSample is an append-only GPS reading posted by the assignee
type LocationSample struct {
	ID         int64
	OrderID    int64
	AgentID    int64
	Lat        float64
	Lng        float64
	Address    string
	Accuracy   *float64
	Speed      *float64
	Heading    *float64
	RecordedAt time.Time
}

// Point returns the sample as a GeoLocation
func (s LocationSample) Point() valueobject.GeoLocation {
	ts := s.RecordedAt
	return valueobject.GeoLocation{Lat: s.Lat, Lng: s.Lng, Address: s.Address, Timestamp: &ts}
}

// JitterFunc returns a random offset in [-RouteJitter, RouteJitter]
type JitterFunc func() float64

// DefaultJitter draws uniformly from math/rand
func DefaultJitter() float64 {
	return (rand.Float64()*2 - 1) * RouteJitter
}

// SimulateRoute interpolates RoutePoints samples from pickup to delivery.
// Inner points get jitter; samples are RouteInterval apart starting
// RouteLookBack before now. Accuracy, speed and heading are plausible noise.
func SimulateRoute(orderID, agentID int64, pickup, delivery valueobject.GeoLocation, now time.Time, jitter JitterFunc) []LocationSample {
	if jitter == nil {
		jitter = DefaultJitter
	}
	start := now.Add(-RouteLookBack)
	samples := make([]LocationSample, 0, RoutePoints)
	for i := 0; i < RoutePoints; i++ {
		t := float64(i) / float64(RoutePoints-1)
		p := pickup.Interpolate(delivery, t)
		if i > 0 && i < RoutePoints-1 {
			p.Lat += jitter()
			p.Lng += jitter()
		}
		accuracy := 10 + rand.Float64()*20
		speed := 8 + rand.Float64()*12
		heading := rand.Float64() * 360
		samples = append(samples, LocationSample{
			OrderID:    orderID,
			AgentID:    agentID,
			Lat:        p.Lat,
			Lng:        p.Lng,
			Address:    fmt.Sprintf("Location %d on route", i+1),
			Accuracy:   &accuracy,
			Speed:      &speed,
			Heading:    &heading,
			RecordedAt: start.Add(time.Duration(i) * RouteInterval),
		})
	}
	return samples
}

// SimulateRoute builds a demo route for the assignee and moves the current
// location to its final point.
func (o *Order) SimulateRoute(agentID int64, now time.Time, jitter JitterFunc) ([]LocationSample, error) {
	if !o.IsAssignedTo(agentID) {
		return nil, ErrNotAssignedToYou
	}
	if o.PickupLocation == nil || o.DeliveryLocation == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Pickup and delivery locations are required")
	}
	samples := SimulateRoute(o.ID, agentID, *o.PickupLocation, *o.DeliveryLocation, now, jitter)
	last := samples[len(samples)-1].Point()
	last.Address = "Near delivery location"
	o.CurrentLocation = &last
	o.UpdatedAt = now
	return samples, nil
}
