package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// ApplicationStore holds permit applications. One mutex serializes all
// mutations, which satisfies the per-application serialization contract;
// list order is creation order.
type ApplicationStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Application
	order []string
}

func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{byID: make(map[string]*domain.Application)}
}

var _ ports.ApplicationRepository = (*ApplicationStore)(nil)

func (s *ApplicationStore) Create(_ context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[app.ID]; exists {
		return domain.WrapError(domain.ErrValidation, "create application",
			fmt.Errorf("duplicate id %s", app.ID))
	}
	s.byID[app.ID] = deepCopy(app)
	s.order = append(s.order, app.ID)
	return nil
}

func (s *ApplicationStore) Get(_ context.Context, id string) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get application",
			fmt.Errorf("application %s", id))
	}
	return deepCopy(app), nil
}

func (s *ApplicationStore) List(_ context.Context) ([]*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Application, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, deepCopy(s.byID[id]))
	}
	return out, nil
}

// Mutate runs fn against a draft copy and commits it only when fn succeeds,
// so a failed mutation leaves no partial state behind.
func (s *ApplicationStore) Mutate(_ context.Context, id string, fn func(*domain.Application) error) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "mutate application",
			fmt.Errorf("application %s", id))
	}

	draft := deepCopy(app)
	if err := fn(draft); err != nil {
		return nil, err
	}
	s.byID[id] = draft
	return deepCopy(draft), nil
}
