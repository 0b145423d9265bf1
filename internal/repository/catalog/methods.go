// Package catalog implements the payment method repository over static
// configuration. Methods are supplied by config, not computed, so there is
// no database behind this repository.
package catalog

import (
	"context"
	"fmt"

	"github.com/comanda/backoffice/internal/domain"
)

// MethodRepository serves a fixed payment method list.
type MethodRepository struct {
	byID  map[string]*domain.PaymentMethod
	order []string
}

// NewMethodRepository builds the repository from a configured list.
// Duplicate IDs are rejected so a misconfigured catalog fails at startup
// rather than at checkout.
func NewMethodRepository(methods []domain.PaymentMethod) (*MethodRepository, error) {
	r := &MethodRepository{
		byID: make(map[string]*domain.PaymentMethod, len(methods)),
	}
	for i := range methods {
		m := methods[i]
		if m.ID == "" {
			return nil, fmt.Errorf("payment method %d has an empty id", i)
		}
		if _, ok := r.byID[m.ID]; ok {
			return nil, fmt.Errorf("duplicate payment method id %q", m.ID)
		}
		r.byID[m.ID] = &m
		r.order = append(r.order, m.ID)
	}
	return r, nil
}

// GetByID returns one method.
func (r *MethodRepository) GetByID(_ context.Context, id string) (*domain.PaymentMethod, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPaymentMethodNotFound
	}
	out := *m
	return &out, nil
}

// List returns the catalog in configuration order.
func (r *MethodRepository) List(_ context.Context) ([]*domain.PaymentMethod, error) {
	out := make([]*domain.PaymentMethod, 0, len(r.order))
	for _, id := range r.order {
		m := *r.byID[id]
		out = append(out, &m)
	}
	return out, nil
}
