package balance

import (
	"context"
	"sync"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

type pairKey struct {
	scope    ids.ScopeID
	debtor   ids.UserID
	creditor ids.UserID
}

// MemStore is an in-memory Store used by unit tests. Not durable across
// restarts.
type MemStore struct {
	mu   sync.Mutex
	rows map[pairKey]money.Money
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[pairKey]money.Money)}
}

func (s *MemStore) GetPair(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[pairKey{scope, debtor, creditor}], nil
}

func (s *MemStore) UpsertAtomic(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID, delta money.Money, mode DeltaMode) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{scope, debtor, creditor}
	current := s.rows[key]

	var result money.Money
	switch mode {
	case Increment:
		result = current.Add(delta)
	case Decrement:
		result = current.Sub(delta)
		if result.IsNegative() {
			result = 0
		}
	case Set:
		result = delta
	case Delete:
		result = 0
	}

	if result.IsZero() {
		delete(s.rows, key)
	} else {
		s.rows[key] = result
	}
	return result, nil
}

func (s *MemStore) ScanByDebtor(ctx context.Context, debtor ids.UserID, scope ids.ScopeID) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for k, amt := range s.rows {
		if k.debtor == debtor && k.scope == scope {
			out = append(out, Entry{Debtor: k.debtor, Creditor: k.creditor, Scope: k.scope, Amount: amt})
		}
	}
	return out, nil
}

func (s *MemStore) ScanByCreditor(ctx context.Context, creditor ids.UserID, scope ids.ScopeID) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for k, amt := range s.rows {
		if k.creditor == creditor && k.scope == scope {
			out = append(out, Entry{Debtor: k.debtor, Creditor: k.creditor, Scope: k.scope, Amount: amt})
		}
	}
	return out, nil
}

func (s *MemStore) ScanByScope(ctx context.Context, scope ids.ScopeID) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for k, amt := range s.rows {
		if k.scope == scope {
			out = append(out, Entry{Debtor: k.debtor, Creditor: k.creditor, Scope: k.scope, Amount: amt})
		}
	}
	return out, nil
}

func (s *MemStore) ScanByUser(ctx context.Context, u ids.UserID) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for k, amt := range s.rows {
		if k.debtor == u || k.creditor == u {
			out = append(out, Entry{Debtor: k.debtor, Creditor: k.creditor, Scope: k.scope, Amount: amt})
		}
	}
	return out, nil
}

func (s *MemStore) BulkReplace(ctx context.Context, scope ids.ScopeID, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.rows {
		if k.scope == scope {
			delete(s.rows, k)
		}
	}
	for _, e := range entries {
		if e.Amount.IsZero() {
			continue
		}
		s.rows[pairKey{scope, e.Debtor, e.Creditor}] = e.Amount
	}
	return nil
}
