package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mattlowe/formhall/internal/field"
	"github.com/mattlowe/formhall/internal/render"
	"github.com/mattlowe/formhall/internal/store"
	"github.com/mattlowe/formhall/internal/submission"
)

// SubmissionHandler serves submission intake, review and export.
type SubmissionHandler struct {
	store *store.Store
	// exportPageSize caps each store fetch while streaming an export.
	exportPageSize int
}

// NewSubmissionHandler creates a SubmissionHandler backed by the given store.
func NewSubmissionHandler(s *store.Store, exportPageSize int) *SubmissionHandler {
	if exportPageSize <= 0 {
		exportPageSize = 500
	}
	return &SubmissionHandler{store: s, exportPageSize: exportPageSize}
}

type submitRequest struct {
	Submitter string            `json:"submitter"`
	Values    map[string]string `json:"values"`
}

// SubmitForm handles POST /v1/forms/{form_id}/submissions. Validation
// failures come back as a per-field error map with status 422.
func (h *SubmissionHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	ctx := r.Context()
	form, err := h.store.GetForm(ctx, formID)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	sub, err := render.Submit(ctx, h.store, formID, req.Submitter, form.Fields, req.Values)
	if err != nil {
		var verr *render.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "submission is invalid",
				"code":   "VALIDATION_ERROR",
				"fields": verr.Fields,
			})
			return
		}
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// submissionView is one stored submission with its values resolved to
// labels for review.
type submissionView struct {
	field.Submission
	Rows []submission.Row `json:"rows"`
}

// ListSubmissions handles GET /v1/forms/{form_id}/submissions?skip=&limit=.
func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	p := parsePagination(r)

	ctx := r.Context()
	form, err := h.store.GetForm(ctx, formID)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	subs, total, err := h.store.ListSubmissions(ctx, formID, p.Skip, p.Limit)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	views := make([]submissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, submissionView{
			Submission: sub,
			Rows:       submission.Resolve(sub, form.Fields),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": views,
		"total":       total,
		"skip":        p.Skip,
		"limit":       p.Limit,
	})
}

// DeleteSubmission handles DELETE /v1/forms/{form_id}/submissions/{submission_id}.
func (h *SubmissionHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	subID, ok := parseID(w, r, "submission_id")
	if !ok {
		return
	}
	if err := h.store.DeleteSubmission(r.Context(), formID, subID); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /v1/forms/{form_id}/submissions/export?format=csv|xlsx.
func (h *SubmissionHandler) Export(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "format must be \"csv\" or \"xlsx\"")
		return
	}

	ctx := r.Context()
	form, err := h.store.GetForm(ctx, formID)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	var records []field.Submission
	for skip := 0; ; skip += h.exportPageSize {
		page, total, err := h.store.ListSubmissions(ctx, formID, skip, h.exportPageSize)
		if err != nil {
			storeErrorToHTTP(w, err)
			return
		}
		records = append(records, page...)
		if len(records) >= total || len(page) == 0 {
			break
		}
	}

	switch format {
	case "csv":
		body := submission.ExportCSV(records, form.Fields)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", submission.CSVFilename(formID)))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	case "xlsx":
		body, err := submission.ExportXLSX(records, form.Fields)
		if err != nil {
			storeErrorToHTTP(w, err)
			return
		}
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", submission.XLSXFilename(formID)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
