package handler

import (
	"net/http"
	"strings"

	"github.com/mattlowe/formhall/internal/lookup"
)

// MemberHandler serves member directory search for member_lookup fields.
type MemberHandler struct {
	dir lookup.Directory
}

// NewMemberHandler creates a MemberHandler over the given directory.
func NewMemberHandler(dir lookup.Directory) *MemberHandler {
	return &MemberHandler{dir: dir}
}

// Search handles GET /v1/members/search?q=. Queries shorter than the
// minimum length return an empty result set without touching the directory.
func (h *MemberHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(query)) < lookup.MinQueryLen {
		writeJSON(w, http.StatusOK, map[string]any{"members": []lookup.Member{}})
		return
	}

	members, err := h.dir.SearchMembers(r.Context(), query, lookup.MaxResults)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if members == nil {
		members = []lookup.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}
