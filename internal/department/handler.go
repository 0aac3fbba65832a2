package department

import (
	"net/http"

	"github.com/frahmantamala/request-routing/internal/transport"
)

// Entry is one canonical department with the spellings that resolve to it.
type Entry struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type Handler struct {
	*transport.BaseHandler
	Table *Table
}

func NewHandler(baseHandler *transport.BaseHandler, table *Table) *Handler {
	if table == nil {
		table = Default()
	}
	return &Handler{
		BaseHandler: baseHandler,
		Table:       table,
	}
}

// Entries lists the canonical departments with their aliases.
func (t *Table) Entries() []Entry {
	names := t.Canonical()
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		aliases := t.Aliases(name)
		if aliases == nil {
			aliases = []string{}
		}
		out = append(out, Entry{Name: name, Aliases: aliases})
	}
	return out
}

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"departments": h.Table.Entries(),
	})
}

type normalizeRequest struct {
	Name string `json:"name"`
}

// NormalizeDepartment resolves one free-text name. Unknown names come back
// cleaned with known set to false.
func (h *Handler) NormalizeDepartment(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	canonical := h.Table.Normalize(req.Name)
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"department": canonical,
		"known":      h.Table.IsKnown(req.Name),
		"file_token": FileToken(canonical),
	})
}
