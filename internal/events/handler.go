package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/pagination"
	"github.com/splitcore/settle/pkg/middleware"
	"github.com/splitcore/settle/pkg/response"
)

// Handler exposes Store's activity log read-only, scoped to the caller.
type Handler struct {
	store Store
}

// NewHandler builds a Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes returns the router mounted at /api/v1/activity.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// wireEventDTO is the wire shape for one activity row.
type wireEventDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Scope     string `json:"scope,omitempty"`
	EntityID  string `json:"entityId"`
	CreatedAt string `json:"createdAt"`
}

// List handles GET /activity: the caller's own event log, newest first,
// paginated via the opaque ?cursor= token and ?limit= (default 20, max 100).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

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

	evs, hasMore, err := h.store.ListByUser(r.Context(), ids.UserID(userID), cursor, limit)
	if err != nil {
		response.InternalError(w, "failed to list activity")
		return
	}

	out := make([]wireEventDTO, len(evs))
	for i, e := range evs {
		out[i] = wireEventDTO{
			ID:        e.ID,
			Type:      string(e.Type),
			Scope:     string(e.Scope),
			EntityID:  e.EntityID,
			CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		}
	}

	page := pagination.Page{Limit: limit, HasMore: hasMore}
	if len(evs) > 0 {
		if hasMore {
			last := evs[len(evs)-1]
			page.NextCursor = pagination.Encode(pagination.Cursor{SortValue: last.CreatedAtNs, ID: last.ID})
		}
		if cursor != nil {
			first := evs[0]
			page.PrevCursor = pagination.Encode(pagination.Cursor{SortValue: first.CreatedAtNs, ID: first.ID})
		}
	}

	response.JSONCursorPage(w, http.StatusOK, out, page)
}
