// Package ledgerservice is the mutation orchestrator: the only place that
// posts an expense or settles a debt, wiring SplitCalculator, LockService,
// BalanceStore, JobRunner, and EventEmitter together around each write.
package ledgerservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/events"
	"github.com/splitcore/settle/internal/expense"
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/jobs"
	"github.com/splitcore/settle/internal/ledger"
	"github.com/splitcore/settle/internal/lockservice"
	"github.com/splitcore/settle/internal/money"
	"github.com/splitcore/settle/internal/settlement"
	"github.com/splitcore/settle/internal/split"
)

// ErrInvalidSettlement is returned when a settlement amount exceeds (or no
// pair row backs) the current balance between debtor and creditor.
var ErrInvalidSettlement = errors.New("invalid_settlement: amount exceeds the current balance")

// MembershipChecker answers whether userID belongs to the group scope
// identifies. DIRECT scope never calls this.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID int64, userID ids.UserID) (bool, error)
}

// Service is LedgerService (C8).
type Service struct {
	expenses     *expense.Repository
	balances     balance.Store
	locks        lockservice.Service
	runner       jobs.Runner
	emitter      *events.Emitter
	settlements  *settlement.Repository
	members      MembershipChecker
	splits       *split.Factory

	lockTTL  time.Duration
	waitTTL  time.Duration
}

// Config bundles the tunables New needs beyond its collaborators.
type Config struct {
	LockTTL time.Duration // default 10s
	WaitTTL time.Duration // default 5s
}

// New wires a Service from its collaborators, per §4.7.
func New(
	expenses *expense.Repository,
	balances balance.Store,
	locks lockservice.Service,
	runner jobs.Runner,
	emitter *events.Emitter,
	settlements *settlement.Repository,
	members MembershipChecker,
	cfg Config,
) *Service {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.WaitTTL <= 0 {
		cfg.WaitTTL = 5 * time.Second
	}
	return &Service{
		expenses:    expenses,
		balances:    balances,
		locks:       locks,
		runner:      runner,
		emitter:     emitter,
		settlements: settlements,
		members:     members,
		splits:      split.NewFactory(),
		lockTTL:     cfg.LockTTL,
		waitTTL:     cfg.WaitTTL,
	}
}

func lockNameFor(scope ids.ScopeID, payer ids.UserID) string {
	if scope.IsDirect() {
		return ids.DirectLockName(payer)
	}
	return ids.ScopeLockName(scope)
}

// PostExpense validates membership, computes splits, and mutates
// BalanceStore under the scope's lock. Implements expense.Poster.
func (s *Service) PostExpense(ctx context.Context, payer ids.UserID, req expense.CreateExpenseRequest) (*expense.Expense, error) {
	if groupID, ok := req.Scope.GroupID(); ok {
		member, err := s.members.IsMember(ctx, groupID, payer)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, expense.ErrNotMember
		}
	} else if len(req.Participants) == 0 {
		return nil, split.ErrNoParticipants
	}

	strategy, err := s.splits.Create(split.Mode(req.SplitMode))
	if err != nil {
		return nil, err
	}

	amount := money.Money(req.Amount)
	shares, err := strategy.Calculate(amount, payer, toSplitParticipants(req.Participants))
	if err != nil {
		return nil, err
	}

	e := &expense.Expense{
		Scope:        req.Scope,
		PayerID:      payer,
		Description:  req.Description,
		Amount:       amount,
		SplitMode:    split.Mode(req.SplitMode),
		Participants: req.Participants,
		Splits:       toExpenseSplits(shares),
		Date:         time.Now(),
	}
	e, err = s.expenses.Create(ctx, e)
	if err != nil {
		return nil, err
	}

	lockName := lockNameFor(req.Scope, payer)
	lease, err := s.locks.Acquire(ctx, lockName, s.lockTTL, s.waitTTL)
	if err != nil {
		return nil, err
	}
	defer s.locks.Release(ctx, lease)

	affected := map[ids.UserID]bool{payer: true}
	for _, sh := range e.Splits {
		if err := s.applySplit(ctx, req.Scope, payer, sh); err != nil {
			return nil, err
		}
		affected[sh.UserID] = true
	}

	s.afterCommit(ctx, req.Scope, affected, func() {
		_ = s.emitter.Emit(ctx, events.TypeExpenseAdded, payer, req.Scope, fmt.Sprintf("expense:%d", e.ID), map[string]any{
			"expenseId": e.ID,
			"payerId":   payer,
			"amount":    int64(amount),
		})
	})

	return e, nil
}

// applySplit performs one split's share of addDebt's algebra against
// BalanceStore, per §4.7 step 4.
func (s *Service) applySplit(ctx context.Context, scope ids.ScopeID, payer ids.UserID, sh expense.Split) error {
	reverse, err := s.balances.GetPair(ctx, payer, sh.UserID, scope)
	if err != nil {
		return err
	}

	plan := ledger.PlanAddDebt(reverse, sh.Amount)

	if reverse.IsPositive() {
		if plan.NewReverse.IsZero() {
			if _, err := s.balances.UpsertAtomic(ctx, payer, sh.UserID, scope, 0, balance.Delete); err != nil {
				return err
			}
		} else {
			if _, err := s.balances.UpsertAtomic(ctx, payer, sh.UserID, scope, plan.NewReverse, balance.Set); err != nil {
				return err
			}
		}
	}

	if plan.ForwardIncrement.IsPositive() {
		if _, err := s.balances.UpsertAtomic(ctx, sh.UserID, payer, scope, plan.ForwardIncrement, balance.Increment); err != nil {
			return err
		}
	}
	return nil
}

// Settle atomically decrements (debtor, creditor) by amount, recording a
// receipt afterward. Implements §4.7's settle operation.
func (s *Service) Settle(ctx context.Context, scope ids.ScopeID, debtor, creditor ids.UserID, amount money.Money) (*settlement.Settlement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidSettlement)
	}

	lockName := lockNameFor(scope, debtor)
	lease, err := s.locks.Acquire(ctx, lockName, s.lockTTL, s.waitTTL)
	if err != nil {
		return nil, err
	}
	defer s.locks.Release(ctx, lease)

	current, err := s.balances.GetPair(ctx, debtor, creditor, scope)
	if err != nil {
		return nil, err
	}
	if current.Cmp(amount) < 0 {
		return nil, ErrInvalidSettlement
	}

	if _, err := s.balances.UpsertAtomic(ctx, debtor, creditor, scope, amount, balance.Decrement); err != nil {
		return nil, err
	}

	receipt, err := s.settlements.Create(ctx, &settlement.Settlement{
		Scope:      scope,
		PayerID:    debtor,
		ReceiverID: creditor,
		Amount:     amount,
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, scope, map[ids.UserID]bool{debtor: true, creditor: true}, func() {
		_ = s.emitter.Emit(ctx, events.TypeSettlement, debtor, scope, fmt.Sprintf("settlement:%d", receipt.ID), map[string]any{
			"debtor":   debtor,
			"creditor": creditor,
			"amount":   int64(amount),
		})
	})

	return receipt, nil
}

// afterCommit enqueues cache invalidation for every affected user (and the
// scope, if it's a group) via JobRunner, then runs emit (best-effort —
// failures here never unwind the mutation that already committed).
func (s *Service) afterCommit(ctx context.Context, scope ids.ScopeID, affected map[ids.UserID]bool, emit func()) {
	for u := range affected {
		payload, _ := json.Marshal(map[string]any{"userId": u})
		_ = s.runner.Enqueue(ctx, jobs.TypeInvalidateCache, payload, jobs.Options{})
	}
	if !scope.IsDirect() {
		payload, _ := json.Marshal(map[string]any{"scope": scope})
		_ = s.runner.Enqueue(ctx, jobs.TypeInvalidateCache, payload, jobs.Options{})
	}
	emit()
}

// Recompute replays every expense in scope through LedgerCore and swaps
// the result into BalanceStore in one step, repairing any drift between
// incremental writes and the expense history.
func (s *Service) Recompute(ctx context.Context, scope ids.ScopeID) error {
	// Recompute repairs one scope as a unit, including DIRECT, so it takes
	// the scope-wide lock name even though ordinary DIRECT mutations lock
	// per-payer instead.
	lease, err := s.locks.Acquire(ctx, ids.ScopeLockName(scope), s.lockTTL, s.waitTTL)
	if err != nil {
		return err
	}
	defer s.locks.Release(ctx, lease)

	expenses, err := s.expenses.ListByScope(ctx, scope)
	if err != nil {
		return err
	}

	core := ledger.NewCore()
	for _, e := range expenses {
		for _, sh := range e.Splits {
			if err := core.AddDebt(sh.UserID, e.PayerID, sh.Amount); err != nil {
				return fmt.Errorf("ledgerservice: recompute expense %d: %w", e.ID, err)
			}
		}
	}

	snapshot := core.Snapshot()
	var entries []balance.Entry
	for debtor, row := range snapshot {
		for creditor, amount := range row {
			entries = append(entries, balance.Entry{Debtor: debtor, Creditor: creditor, Scope: scope, Amount: amount})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Debtor != entries[j].Debtor {
			return entries[i].Debtor < entries[j].Debtor
		}
		return entries[i].Creditor < entries[j].Creditor
	})

	return s.balances.BulkReplace(ctx, scope, entries)
}

func toSplitParticipants(participants []expense.Participant) []split.Participant {
	out := make([]split.Participant, len(participants))
	for i, p := range participants {
		sp := split.Participant{UserID: p.UserID}
		if p.ExactAmount != nil {
			sp.ExactAmount = *p.ExactAmount
		}
		if p.PercentBp != nil {
			sp.PercentBp = *p.PercentBp
		}
		out[i] = sp
	}
	return out
}

func toExpenseSplits(shares []split.Share) []expense.Split {
	out := make([]expense.Split, len(shares))
	for i, sh := range shares {
		out[i] = expense.Split{UserID: sh.UserID, Amount: sh.Amount}
	}
	return out
}
