package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// PaymentStore holds payment records.
type PaymentStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Payment
	order []string
}

func NewPaymentStore() *PaymentStore {
	return &PaymentStore{byID: make(map[string]*domain.Payment)}
}

var _ ports.PaymentRepository = (*PaymentStore)(nil)

func (s *PaymentStore) Create(_ context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[payment.ID] = deepCopy(payment)
	s.order = append(s.order, payment.ID)
	return nil
}

func (s *PaymentStore) Get(_ context.Context, id string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payment, ok := s.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get payment", fmt.Errorf("payment %s", id))
	}
	return deepCopy(payment), nil
}

func (s *PaymentStore) GetByApplication(_ context.Context, applicationID string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Latest payment attempt wins, matching the postgres repository.
	for i := len(s.order) - 1; i >= 0; i-- {
		if p := s.byID[s.order[i]]; p != nil && p.ApplicationID == applicationID {
			return deepCopy(p), nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get payment by application",
		fmt.Errorf("application %s", applicationID))
}

func (s *PaymentStore) List(_ context.Context) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Payment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, deepCopy(s.byID[id]))
	}
	return out, nil
}

func (s *PaymentStore) Mutate(_ context.Context, id string, fn func(*domain.Payment) error) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "mutate payment", fmt.Errorf("payment %s", id))
	}
	draft := deepCopy(payment)
	if err := fn(draft); err != nil {
		return nil, err
	}
	s.byID[id] = draft
	return deepCopy(draft), nil
}
