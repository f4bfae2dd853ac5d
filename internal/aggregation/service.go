// Package aggregation builds per-user and per-scope balance views on top
// of BalanceStore, cached through CacheLayer.
package aggregation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/cache"
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/jobs"
	"github.com/splitcore/settle/internal/money"
)

// CacheTTL is how long an aggregated view stays cached before a read falls
// back to recomputing it from BalanceStore.
const CacheTTL = 5 * time.Minute

// CounterpartyBalance is one line of a UserView's owes/owed lists.
type CounterpartyBalance struct {
	Counterparty ids.UserID `json:"counterparty"`
	Amount       money.Money `json:"amount"`
}

// UserView is the per-user aggregated balance picture.
type UserView struct {
	Owes       []CounterpartyBalance `json:"owes"`
	Owed       []CounterpartyBalance `json:"owed"`
	TotalOwes  money.Money           `json:"totalOwes"`
	TotalOwed  money.Money           `json:"totalOwed"`
	NetBalance money.Money           `json:"netBalance"`
}

// ScopeMatrix is debtor -> creditor -> amount within one scope.
type ScopeMatrix map[ids.UserID]map[ids.UserID]money.Money

// Service is the AggregationService.
type Service struct {
	store balance.Store
	cache cache.Cache
}

// New builds an AggregationService over store, reading through cache.
func New(store balance.Store, c cache.Cache) *Service {
	return &Service{store: store, cache: c}
}

func userKey(u ids.UserID) string  { return fmt.Sprintf("bal:user:%d", u) }
func scopeKey(s ids.ScopeID) string { return fmt.Sprintf("bal:scope:%s", s) }

// GetUserView returns u's aggregated balance across every scope. When
// fresh is true, the cache is bypassed entirely (read-your-write callers,
// e.g. the caller that just posted an expense).
func (s *Service) GetUserView(ctx context.Context, u ids.UserID, fresh bool) (UserView, error) {
	compute := func(ctx context.Context) ([]byte, error) {
		view, err := s.computeUserView(ctx, u)
		if err != nil {
			return nil, err
		}
		return json.Marshal(view)
	}

	var raw []byte
	var err error
	if fresh {
		raw, err = compute(ctx)
	} else {
		raw, err = s.cache.GetOrCompute(ctx, userKey(u), CacheTTL, compute)
	}
	if err != nil {
		return UserView{}, err
	}

	var view UserView
	if err := json.Unmarshal(raw, &view); err != nil {
		return UserView{}, err
	}
	return view, nil
}

func (s *Service) computeUserView(ctx context.Context, u ids.UserID) (UserView, error) {
	entries, err := s.store.ScanByUser(ctx, u)
	if err != nil {
		return UserView{}, err
	}

	owesBy := make(map[ids.UserID]money.Money)
	owedBy := make(map[ids.UserID]money.Money)
	for _, e := range entries {
		switch {
		case e.Debtor == u:
			owesBy[e.Creditor] = owesBy[e.Creditor].Add(e.Amount)
		case e.Creditor == u:
			owedBy[e.Debtor] = owedBy[e.Debtor].Add(e.Amount)
		}
	}

	view := UserView{
		Owes: toSortedList(owesBy),
		Owed: toSortedList(owedBy),
	}
	for _, o := range view.Owes {
		view.TotalOwes = view.TotalOwes.Add(o.Amount)
	}
	for _, o := range view.Owed {
		view.TotalOwed = view.TotalOwed.Add(o.Amount)
	}
	view.NetBalance = view.TotalOwed.Sub(view.TotalOwes)
	return view, nil
}

func toSortedList(m map[ids.UserID]money.Money) []CounterpartyBalance {
	out := make([]CounterpartyBalance, 0, len(m))
	for counterparty, amount := range m {
		out = append(out, CounterpartyBalance{Counterparty: counterparty, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Counterparty < out[j].Counterparty })
	return out
}

// GetScopeMatrix returns the full debtor->creditor->amount matrix for scope.
func (s *Service) GetScopeMatrix(ctx context.Context, scope ids.ScopeID, fresh bool) (ScopeMatrix, error) {
	compute := func(ctx context.Context) ([]byte, error) {
		matrix, err := s.computeScopeMatrix(ctx, scope)
		if err != nil {
			return nil, err
		}
		return json.Marshal(matrix)
	}

	var raw []byte
	var err error
	if fresh {
		raw, err = compute(ctx)
	} else {
		raw, err = s.cache.GetOrCompute(ctx, scopeKey(scope), CacheTTL, compute)
	}
	if err != nil {
		return nil, err
	}

	var matrix ScopeMatrix
	if err := json.Unmarshal(raw, &matrix); err != nil {
		return nil, err
	}
	return matrix, nil
}

func (s *Service) computeScopeMatrix(ctx context.Context, scope ids.ScopeID) (ScopeMatrix, error) {
	entries, err := s.store.ScanByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	matrix := make(ScopeMatrix)
	for _, e := range entries {
		row, ok := matrix[e.Debtor]
		if !ok {
			row = make(map[ids.UserID]money.Money)
			matrix[e.Debtor] = row
		}
		row[e.Creditor] = e.Amount
	}
	return matrix, nil
}

// InvalidateUser evicts u's cached view; called by the job handler after a
// mutation touching u commits.
func (s *Service) InvalidateUser(ctx context.Context, u ids.UserID) error {
	return s.cache.Del(ctx, userKey(u))
}

// InvalidateScope evicts scope's cached matrix.
func (s *Service) InvalidateScope(ctx context.Context, scope ids.ScopeID) error {
	return s.cache.Del(ctx, scopeKey(scope))
}

type invalidationPayload struct {
	UserID *ids.UserID  `json:"userId,omitempty"`
	Scope  *ids.ScopeID `json:"scope,omitempty"`
}

// RegisterInvalidator wires Service as the TypeInvalidateCache handler.
// LedgerService enqueues one job per affected user (and, for group scopes,
// one more for the scope) after every committed mutation.
func RegisterInvalidator(runner jobs.Runner, agg *Service) {
	runner.RegisterHandler(jobs.TypeInvalidateCache, func(ctx context.Context, payload []byte) error {
		var p invalidationPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		if p.UserID != nil {
			return agg.InvalidateUser(ctx, *p.UserID)
		}
		if p.Scope != nil {
			return agg.InvalidateScope(ctx, *p.Scope)
		}
		return nil
	})
}
