package catalog

import (
	"strings"
	"time"

	"github.com/sudharshini/backend/internal/domain/shared"
)

// Supplier is a vendor products are sourced from
type Supplier struct {
	ID            int64
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SupplierDetails carries the editable supplier fields
type SupplierDetails struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// NewSupplier creates a supplier
func NewSupplier(d SupplierDetails) (*Supplier, error) {
	s := &Supplier{}
	if err := s.Update(d); err != nil {
		return nil, err
	}
	s.CreatedAt = s.UpdatedAt
	return s, nil
}

// Update replaces the supplier's fields
func (s *Supplier) Update(d SupplierDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Supplier name cannot be empty")
	}
	s.Name = name
	s.ContactPerson = strings.TrimSpace(d.ContactPerson)
	s.Email = strings.TrimSpace(d.Email)
	s.Phone = strings.TrimSpace(d.Phone)
	s.Address = strings.TrimSpace(d.Address)
	s.UpdatedAt = time.Now()
	return nil
}
