package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/jobs"
)

// Emitter is the EventEmitter: it hands persistence off to JobRunner so
// emitting never blocks the write path that triggered it. If persistence
// ultimately fails, the authoritative mutation that already committed is
// unaffected; only the audit trail is incomplete.
type Emitter struct {
	runner jobs.Runner
}

// NewEmitter wires an Emitter to a Runner. The caller must also call
// RegisterPersister once during startup to wire the actual Store.
func NewEmitter(runner jobs.Runner) *Emitter {
	return &Emitter{runner: runner}
}

type wireEvent struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	UserID      ids.UserID      `json:"userId"`
	Scope       ids.ScopeID     `json:"scope"`
	EntityID    string          `json:"entityId"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAtNs int64           `json:"createdAtNs"`
}

// Emit enqueues an event of typ for persistence and any downstream
// projections (e.g. notifications). entityID combined with typ and the
// emission timestamp forms the idempotency key a redelivered job relies on.
func (e *Emitter) Emit(ctx context.Context, typ Type, userID ids.UserID, scope ids.ScopeID, entityID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	now := time.Now()
	wire := wireEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		UserID:      userID,
		Scope:       scope,
		EntityID:    entityID,
		Payload:     raw,
		CreatedAtNs: now.UnixNano(),
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return err
	}

	if err := e.runner.Enqueue(ctx, jobs.TypePersistEvent, body, jobs.Options{}); err != nil {
		return err
	}
	return e.runner.Enqueue(ctx, jobs.TypeNotify, body, jobs.Options{})
}

// RegisterPersister wires a Store as the TypePersistEvent handler.
func RegisterPersister(runner jobs.Runner, store Store) {
	runner.RegisterHandler(jobs.TypePersistEvent, func(ctx context.Context, payload []byte) error {
		var w wireEvent
		if err := json.Unmarshal(payload, &w); err != nil {
			return err
		}
		return store.Append(ctx, Event{
			ID:          w.ID,
			Type:        w.Type,
			UserID:      w.UserID,
			Scope:       w.Scope,
			EntityID:    w.EntityID,
			Payload:     w.Payload,
			CreatedAt:   time.Unix(0, w.CreatedAtNs),
			CreatedAtNs: w.CreatedAtNs,
		})
	})
}
