package catalog

import (
	"context"

	"github.com/sudharshini/backend/internal/domain/catalog"
)

// SupplierService handles supplier CRUD
type SupplierService struct {
	repo catalog.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(repo catalog.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

// List returns every supplier
func (s *SupplierService) List(ctx context.Context) ([]SupplierResponse, error) {
	suppliers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out, nil
}

// GetByID returns a supplier
func (s *SupplierService) GetByID(ctx context.Context, id int64) (*SupplierResponse, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Create creates a supplier
func (s *SupplierService) Create(ctx context.Context, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := catalog.NewSupplier(req.details())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update replaces a supplier's fields
func (s *SupplierService) Update(ctx context.Context, id int64, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier
func (s *SupplierService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
