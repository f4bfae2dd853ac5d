package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/lockservice"
	"github.com/splitcore/settle/internal/money"
	"github.com/splitcore/settle/pkg/middleware"
	"github.com/splitcore/settle/pkg/response"
)

// Settler is satisfied by ledgerservice.Service; kept narrow here so this
// package never imports ledgerservice (which imports this package's
// Repository).
type Settler interface {
	Settle(ctx context.Context, scope ids.ScopeID, debtor, creditor ids.UserID, amount money.Money) (*Settlement, error)
}

// Handler serves settlement receipt reads directly and delegates the
// write (settling a debt) to Settler (LedgerService).
type Handler struct {
	settler Settler
	repo    *Repository
}

// NewHandler builds a Handler.
func NewHandler(settler Settler, repo *Repository) *Handler {
	return &Handler{settler: settler, repo: repo}
}

// Routes returns the router mounted at /api/v1/settlements.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.GetByID)
	return r
}

// Create handles POST /settlements: the caller (debtor) pays down a debt
// to req.CreditorID within req.Scope.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	debtorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	s, err := h.settler.Settle(r.Context(), ids.ScopeID(req.Scope), ids.UserID(debtorID), ids.UserID(req.CreditorID), money.Money(req.Amount))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, s.ToResponse())
}

// GetByID handles GET /settlements/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid settlement id")
		return
	}

	s, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "failed to fetch settlement")
		return
	}
	if s == nil {
		response.NotFound(w, "settlement not found")
		return
	}

	response.JSON(w, http.StatusOK, s.ToResponse())
}

// ListMine handles GET /settlements: every receipt involving the caller,
// paginated.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	settlements, total, err := h.repo.ListByUser(r.Context(), ids.UserID(userID), perPage, (page-1)*perPage)
	if err != nil {
		response.InternalError(w, "failed to list settlements")
		return
	}

	out := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		out[i] = s.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	response.JSONWithMeta(w, http.StatusOK, out, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// writeDomainError maps an error from Settle onto the §7 slug taxonomy.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lockservice.ErrLockTimeout):
		response.LockTimeout(w, 0)
	default:
		response.InvalidSettlement(w, err.Error())
	}
}
