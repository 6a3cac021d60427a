package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/sudharshini/backend/internal/domain/shared"
)

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// IsValid checks if the movement type is known
func (m MovementType) IsValid() bool {
	return m == MovementIn || m == MovementOut
}

// StockMovement is an append-only stock ledger row
type StockMovement struct {
	ID        int64
	ProductID int64
	Type      MovementType
	Quantity  int
	Reason    string
	Notes     string
	CreatedAt time.Time
}

// NewStockMovement creates a ledger row for a stock change
func NewStockMovement(productID int64, movement MovementType, qty int, reason, notes string) (*StockMovement, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product is required")
	}
	if !movement.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid movement type: %s", movement))
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	return &StockMovement{
		ProductID: productID,
		Type:      movement,
		Quantity:  qty,
		Reason:    strings.TrimSpace(reason),
		Notes:     strings.TrimSpace(notes),
		CreatedAt: time.Now(),
	}, nil
}

// OrderReason is the movement reason recorded for an order's stock debit
func OrderReason(orderNumber string) string {
	return "Order: " + orderNumber
}
