package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SupplierInput carries the fields of the supplier registration form.
type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

// SupplierService keeps the supplier directory. Items reference suppliers
// by name only; the directory is informational and nothing in settlement
// depends on it.
type SupplierService interface {
	AddSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
}

type supplierService struct {
	pool   *pgxpool.Pool
	policy RetryPolicy
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool, policy RetryPolicy) SupplierService {
	return &supplierService{pool: pool, policy: policy}
}

func (s *supplierService) AddSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if input.Name == "" {
		return nil, errors.New("supplier name is required")
	}
	sup := &Supplier{}
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.pool.QueryRow(ctx, `
			INSERT INTO suppliers (name, contact, phone)
			VALUES ($1, $2, $3)
			RETURNING id, name, contact, phone, created_at`,
			input.Name, input.Contact, input.Phone,
		).Scan(&sup.ID, &sup.Name, &sup.Contact, &sup.Phone, &sup.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Name, err)
	}
	return sup, nil
}

// ListSuppliers returns all suppliers, ordered by name.
func (s *supplierService) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, contact, phone, created_at
		FROM suppliers
		ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("get suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sp Supplier
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Contact, &sp.Phone, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, nil
}
