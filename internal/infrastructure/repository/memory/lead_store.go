package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmendes/permitflow/internal/core/domain"
	"github.com/rmendes/permitflow/internal/core/ports"
)

// LeadStore holds CRM leads and quick quotes.
type LeadStore struct {
	mu         sync.RWMutex
	leads      map[string]*domain.Lead
	leadOrder  []string
	quotes     map[string]*domain.QuickQuote
	quoteOrder []string
}

func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads:  make(map[string]*domain.Lead),
		quotes: make(map[string]*domain.QuickQuote),
	}
}

var _ ports.LeadRepository = (*LeadStore)(nil)

func (s *LeadStore) CreateLead(_ context.Context, lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = deepCopy(lead)
	s.leadOrder = append(s.leadOrder, lead.ID)
	return nil
}

func (s *LeadStore) GetLead(_ context.Context, id string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get lead", fmt.Errorf("lead %s", id))
	}
	return deepCopy(lead), nil
}

func (s *LeadStore) ListLeads(_ context.Context, status domain.LeadStatus) ([]*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Lead, 0, len(s.leadOrder))
	for _, id := range s.leadOrder {
		lead := s.leads[id]
		if lead == nil || (status != "" && lead.Status != status) {
			continue
		}
		out = append(out, deepCopy(lead))
	}
	return out, nil
}

func (s *LeadStore) MutateLead(_ context.Context, id string, fn func(*domain.Lead) error) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "mutate lead", fmt.Errorf("lead %s", id))
	}
	draft := deepCopy(lead)
	if err := fn(draft); err != nil {
		return nil, err
	}
	s.leads[id] = draft
	return deepCopy(draft), nil
}

func (s *LeadStore) DeleteLead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete lead", fmt.Errorf("lead %s", id))
	}
	delete(s.leads, id)
	s.leadOrder = removeID(s.leadOrder, id)
	return nil
}

func (s *LeadStore) CreateQuote(_ context.Context, quote *domain.QuickQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.ID] = deepCopy(quote)
	s.quoteOrder = append(s.quoteOrder, quote.ID)
	return nil
}

func (s *LeadStore) GetQuote(_ context.Context, id string) (*domain.QuickQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quote, ok := s.quotes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get quote", fmt.Errorf("quote %s", id))
	}
	return deepCopy(quote), nil
}

func (s *LeadStore) ListQuotes(_ context.Context, status domain.LeadStatus) ([]*domain.QuickQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.QuickQuote, 0, len(s.quoteOrder))
	for _, id := range s.quoteOrder {
		quote := s.quotes[id]
		if quote == nil || (status != "" && quote.Status != status) {
			continue
		}
		out = append(out, deepCopy(quote))
	}
	return out, nil
}

func (s *LeadStore) MutateQuote(_ context.Context, id string, fn func(*domain.QuickQuote) error) (*domain.QuickQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quote, ok := s.quotes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "mutate quote", fmt.Errorf("quote %s", id))
	}
	draft := deepCopy(quote)
	if err := fn(draft); err != nil {
		return nil, err
	}
	s.quotes[id] = draft
	return deepCopy(draft), nil
}

func (s *LeadStore) DeleteQuote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotes[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete quote", fmt.Errorf("quote %s", id))
	}
	delete(s.quotes, id)
	s.quoteOrder = removeID(s.quoteOrder, id)
	return nil
}
