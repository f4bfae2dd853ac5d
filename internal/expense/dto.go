package expense

import "github.com/splitcore/settle/internal/ids"

// CreateExpenseRequest is the wire shape LedgerService.postExpense
// consumes, built from the HTTP body plus the authenticated payer.
type CreateExpenseRequest struct {
	Scope        ids.ScopeID   `json:"scope" validate:"required"`
	Description  string        `json:"description" validate:"required,min=1,max=255"`
	Amount       int64         `json:"amount" validate:"required,gt=0"`
	SplitMode    string        `json:"split_mode" validate:"required,oneof=EQUAL EXACT PERCENTAGE"`
	Participants []Participant `json:"participants" validate:"required,min=1"`
}

// ExpenseResponse is the read-side DTO for listing/fetching expenses.
type ExpenseResponse struct {
	ID          int64          `json:"id"`
	Scope       string         `json:"scope"`
	PayerID     int64          `json:"payer_id"`
	Description string         `json:"description"`
	Amount      int64          `json:"amount"`
	SplitMode   string         `json:"split_mode"`
	Splits      []SplitResponse `json:"splits"`
	Date        string         `json:"date"`
	CreatedAt   string         `json:"created_at"`
}

// SplitResponse is one derived debt line in ExpenseResponse.
type SplitResponse struct {
	UserID int64 `json:"user_id"`
	Amount int64 `json:"amount"`
}

// ToResponse converts an Expense model into its wire DTO.
func (e *Expense) ToResponse() *ExpenseResponse {
	splits := make([]SplitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = SplitResponse{UserID: int64(s.UserID), Amount: int64(s.Amount)}
	}
	return &ExpenseResponse{
		ID:          e.ID,
		Scope:       string(e.Scope),
		PayerID:     int64(e.PayerID),
		Description: e.Description,
		Amount:      int64(e.Amount),
		SplitMode:   string(e.SplitMode),
		Splits:      splits,
		Date:        e.Date.Format("2006-01-02T15:04:05Z"),
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
