package catalog

import (
	"context"
	"io"

	"github.com/sudharshini/backend/internal/domain/catalog"
)

// ImageStorage stores uploaded product images and returns their public URL
type ImageStorage interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// StockAlertNotifier delivers stock and expiry alerts to the administrator
type StockAlertNotifier interface {
	SendLowStockAlert(ctx context.Context, p *catalog.Product) error
	SendExpiryAlert(ctx context.Context, products []catalog.Product) error
}
