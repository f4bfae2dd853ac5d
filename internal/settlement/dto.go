package settlement

// SettleRequest is the HTTP body for POST /settlements.
type SettleRequest struct {
	Scope      string `json:"scope" validate:"required"`
	CreditorID int64  `json:"creditor_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

// SettlementResponse is the wire DTO for a Settlement receipt.
type SettlementResponse struct {
	ID         int64  `json:"id"`
	Scope      string `json:"scope"`
	PayerID    int64  `json:"payer_id"`
	ReceiverID int64  `json:"receiver_id"`
	Amount     int64  `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

// ToResponse converts a Settlement model into its wire DTO.
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:         s.ID,
		Scope:      string(s.Scope),
		PayerID:    int64(s.PayerID),
		ReceiverID: int64(s.ReceiverID),
		Amount:     int64(s.Amount),
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
