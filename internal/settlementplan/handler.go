package settlementplan

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitcore/settle/internal/group"
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/pkg/response"
)

// Handler exposes Planner as a read-only HTTP resource.
type Handler struct {
	planner *Planner
	groups  *group.Service
}

// NewHandler builds a Handler. groups resolves a group scope's membership
// list; it is never consulted for AllScopes.
func NewHandler(planner *Planner, groups *group.Service) *Handler {
	return &Handler{planner: planner, groups: groups}
}

// Routes returns the router for settlement-plan endpoints, meant to be
// mounted at /settlement-plans.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{scope}", h.Plan)
	return r
}

// Plan handles GET /settlement-plans/{scope}, where scope is either a
// group id or the literal "ALL" to net a set of participants across every
// scope they share. For "ALL", participants are passed as repeated ?user=
// query params; for a group scope, ?user= is not read and the group's
// joined members are used.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	scopeParam := chi.URLParam(r, "scope")

	var scope ids.ScopeID
	var participants []ids.UserID

	if scopeParam == string(AllScopes) {
		scope = AllScopes
		for _, raw := range r.URL.Query()["user"] {
			u, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				response.BadRequest(w, "invalid user id: "+raw)
				return
			}
			participants = append(participants, ids.UserID(u))
		}
		if len(participants) == 0 {
			response.BadRequest(w, "AllScopes requires at least one ?user= participant")
			return
		}
	} else {
		groupID, err := strconv.ParseInt(scopeParam, 10, 64)
		if err != nil {
			response.BadRequest(w, "scope must be a group id or ALL")
			return
		}
		scope = ids.GroupScope(groupID)

		members, err := h.groups.GetMembers(r.Context(), groupID)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		for _, m := range members {
			if m.Status == group.MemberStatusJoined {
				participants = append(participants, ids.UserID(m.UserID))
			}
		}
	}

	txns, err := h.planner.Plan(r.Context(), scope, participants)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	type wireTxn struct {
		From   int64 `json:"from"`
		To     int64 `json:"to"`
		Amount int64 `json:"amount"`
	}
	out := make([]wireTxn, 0, len(txns))
	for _, t := range txns {
		out = append(out, wireTxn{From: int64(t.From), To: int64(t.To), Amount: int64(t.Amount)})
	}
	response.JSON(w, http.StatusOK, out)
}
