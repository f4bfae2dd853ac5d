package notification

import (
	"context"
	"encoding/json"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/jobs"
)

// wireEvent mirrors events.wireEvent's JSON shape. Duplicated here (rather
// than importing the events package) because this is the TypeNotify job
// payload, not the event log itself — notification only needs to read it.
type wireEvent struct {
	Type     string          `json:"type"`
	UserID   ids.UserID      `json:"userId"`
	EntityID string          `json:"entityId"`
	Payload  json.RawMessage `json:"payload"`
}

type expensePayload struct {
	PayerID ids.UserID `json:"payerId"`
}

type settlementPayload struct {
	Debtor   ids.UserID `json:"debtor"`
	Creditor ids.UserID `json:"creditor"`
}

// RegisterNotifier wires Service as the TypeNotify handler: every domain
// event the core emits becomes a best-effort notification row. A failure
// here never touches the balance mutation that already committed.
func RegisterNotifier(runner jobs.Runner, svc *Service) {
	runner.RegisterHandler(jobs.TypeNotify, func(ctx context.Context, payload []byte) error {
		var w wireEvent
		if err := json.Unmarshal(payload, &w); err != nil {
			return err
		}

		switch w.Type {
		case "expense_added":
			var p expensePayload
			if err := json.Unmarshal(w.Payload, &p); err != nil {
				return err
			}
			if w.UserID == p.PayerID {
				return nil
			}
			entityType := "EXPENSE"
			_, err := svc.repo.Create(ctx, w.UserID, "a new expense was added and you owe money", &entityType, nil)
			return err
		case "settlement":
			var p settlementPayload
			if err := json.Unmarshal(w.Payload, &p); err != nil {
				return err
			}
			if w.UserID != p.Debtor {
				return nil
			}
			entityType := "SETTLEMENT"
			_, err := svc.repo.Create(ctx, p.Creditor, "a debt to you was settled", &entityType, nil)
			return err
		default:
			return nil
		}
	})
}
