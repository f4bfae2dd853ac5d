package expense

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/pagination"
	"github.com/splitcore/settle/pkg/middleware"
	"github.com/splitcore/settle/pkg/response"
)

// Poster is satisfied by ledgerservice.Service; kept as a narrow interface
// here so this package never imports ledgerservice (which imports this
// package's Repository).
type Poster interface {
	PostExpense(ctx context.Context, payer ids.UserID, req CreateExpenseRequest) (*Expense, error)
}

// Handler serves the read side of the expense registry directly and
// delegates expense creation to Poster (LedgerService).
type Handler struct {
	poster Poster
	repo   *Repository
}

// NewHandler builds a Handler.
func NewHandler(poster Poster, repo *Repository) *Handler {
	return &Handler{poster: poster, repo: repo}
}

// Routes returns the router mounted at /api/v1/expenses.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Get("/scope/{scopeId}", h.ListByScope)
	return r
}

// Create handles POST /expenses
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	e, err := h.poster.PostExpense(r.Context(), ids.UserID(payerID), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// GetByID handles GET /expenses/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid expense id")
		return
	}

	e, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "failed to fetch expense")
		return
	}
	if e == nil {
		response.NotFound(w, "expense not found")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// ListByScope handles GET /expenses/scope/{scopeId}, paginated newest-first
// via the opaque ?cursor= token and ?limit= (default 20, max 100).
func (h *Handler) ListByScope(w http.ResponseWriter, r *http.Request) {
	scope := ids.ScopeID(chi.URLParam(r, "scopeId"))
	limit := pagination.ParseLimit(r.URL.Query().Get("limit"))

	var cursor *pagination.Cursor
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		c, err := pagination.Decode(raw)
		if err != nil {
			response.BadRequest(w, "invalid cursor")
			return
		}
		cursor = &c
	}

	expenses, hasMore, err := h.repo.ListByScopePage(r.Context(), scope, cursor, limit)
	if err != nil {
		response.InternalError(w, "failed to list expenses")
		return
	}

	out := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToResponse()
	}

	page := pagination.Page{Limit: limit, HasMore: hasMore}
	if len(expenses) > 0 {
		if hasMore {
			last := expenses[len(expenses)-1]
			page.NextCursor = pagination.Encode(pagination.Cursor{
				SortValue: last.CreatedAt.UnixNano(),
				ID:        strconv.FormatInt(last.ID, 10),
			})
		}
		if cursor != nil {
			first := expenses[0]
			page.PrevCursor = pagination.Encode(pagination.Cursor{
				SortValue: first.CreatedAt.UnixNano(),
				ID:        strconv.FormatInt(first.ID, 10),
			})
		}
	}

	response.JSONCursorPage(w, http.StatusOK, out, page)
}
