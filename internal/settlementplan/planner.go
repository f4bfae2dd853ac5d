// Package settlementplan implements the greedy minimum-cardinality
// settlement planner: given a set of net balances, produce approximately the
// fewest (from, to, amount) transactions that zero everyone out.
package settlementplan

import (
	"context"
	"sort"

	"github.com/splitcore/settle/internal/aggregation"
	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// AllScopes is the sentinel passed to Plan instead of a concrete ScopeID
// to net balances across every scope a user is party to. Cross-scope
// netting is never implicit: callers must ask for it explicitly.
const AllScopes ids.ScopeID = "ALL"

// epsilon is the minor-unit threshold below which a net balance is
// considered settled; 1 cent.
const epsilon = money.Money(1)

// Transaction is one leg of a settlement plan: from owes to, amount.
type Transaction struct {
	From   ids.UserID
	To     ids.UserID
	Amount money.Money
}

// Planner is the SettlementPlanner.
type Planner struct {
	store balance.Store
	agg   *aggregation.Service
}

// New builds a Planner over store, with agg used only for the AllScopes
// cross-scope case (it already does per-user union-of-scopes netting).
func New(store balance.Store, agg *aggregation.Service) *Planner {
	return &Planner{store: store, agg: agg}
}

// Plan produces a deterministic, approximately minimum-cardinality list of
// transactions for scope. scope must be a concrete ScopeID or AllScopes;
// there is no default.
func (p *Planner) Plan(ctx context.Context, scope ids.ScopeID, participants []ids.UserID) ([]Transaction, error) {
	net, err := p.netBalances(ctx, scope, participants)
	if err != nil {
		return nil, err
	}
	return greedyMatch(net), nil
}

// netBalances computes net[u] = total owed to u minus total u owes, for
// either one concrete scope (via the scope matrix) or AllScopes (via each
// participant's cross-scope user view).
func (p *Planner) netBalances(ctx context.Context, scope ids.ScopeID, participants []ids.UserID) (map[ids.UserID]money.Money, error) {
	net := make(map[ids.UserID]money.Money)

	if scope == AllScopes {
		for _, u := range participants {
			view, err := p.agg.GetUserView(ctx, u, true)
			if err != nil {
				return nil, err
			}
			net[u] = net[u].Add(view.NetBalance)
		}
		return net, nil
	}

	entries, err := p.store.ScanByScope(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		net[e.Debtor] = net[e.Debtor].Sub(e.Amount)
		net[e.Creditor] = net[e.Creditor].Add(e.Amount)
	}
	return net, nil
}

type balanceEntry struct {
	user ids.UserID
	amt  money.Money // always positive
}

// greedyMatch implements §4.9's algorithm: partition into creditors/debtors,
// sort both descending by amount (ties broken by ascending userId for
// determinism), then repeatedly match the largest creditor against the
// largest debtor.
func greedyMatch(net map[ids.UserID]money.Money) []Transaction {
	var creditors, debtors []balanceEntry
	for u, n := range net {
		switch {
		case n.Cmp(epsilon) >= 0:
			creditors = append(creditors, balanceEntry{u, n})
		case n.Cmp(epsilon.Neg()) <= 0:
			debtors = append(debtors, balanceEntry{u, n.Neg()})
		}
	}

	sortDesc := func(s []balanceEntry) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].amt != s[j].amt {
				return s[i].amt.Cmp(s[j].amt) > 0
			}
			return s[i].user < s[j].user
		})
	}
	sortDesc(creditors)
	sortDesc(debtors)

	var txns []Transaction
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		c := &creditors[i]
		d := &debtors[j]

		delta := c.amt
		if d.amt.Cmp(delta) < 0 {
			delta = d.amt
		}

		txns = append(txns, Transaction{From: d.user, To: c.user, Amount: delta})

		c.amt = c.amt.Sub(delta)
		d.amt = d.amt.Sub(delta)
		if c.amt.Cmp(epsilon) < 0 {
			i++
		}
		if d.amt.Cmp(epsilon) < 0 {
			j++
		}
	}
	return txns
}
