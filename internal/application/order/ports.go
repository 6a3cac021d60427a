package order

import (
	"context"

	"github.com/sudharshini/backend/internal/domain/order"
	"github.com/sudharshini/backend/internal/domain/shared/valueobject"
)

// DefaultCountry is appended to pincode lookups
const DefaultCountry = "IN"

// GeocodeResult is the outcome of a pincode lookup. When Success is false
// the coordinates are a country-level fallback and must not be stored.
type GeocodeResult struct {
	Lat     float64
	Lng     float64
	Address string
	Success bool
}

// Location converts a successful result into a GeoLocation tagged with the pincode
func (r GeocodeResult) Location(pincode string) (valueobject.GeoLocation, error) {
	return valueobject.NewGeoLocation(r.Lat, r.Lng,
		valueobject.WithAddress(r.Address),
		valueobject.WithPincode(pincode))
}

// Geocoder resolves postal codes into coordinates
type Geocoder interface {
	GeocodePincode(ctx context.Context, pincode, country string) (GeocodeResult, error)
}

// Notifier sends order emails
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) error
	SendOrderStatusUpdate(ctx context.Context, o *order.Order) error
}

// SheetExporter appends an order summary row to an external spreadsheet.
// It returns false without error when exporting is not configured.
type SheetExporter interface {
	AppendOrderRow(ctx context.Context, o *order.Order) (bool, error)
}
