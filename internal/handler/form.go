package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/mattlowe/formhall/internal/builder"
	"github.com/mattlowe/formhall/internal/editor"
	"github.com/mattlowe/formhall/internal/field"
	"github.com/mattlowe/formhall/internal/schema"
	"github.com/mattlowe/formhall/internal/store"
)

// FormHandler serves form and field CRUD.
type FormHandler struct {
	store *store.Store
}

// NewFormHandler creates a FormHandler backed by the given store.
func NewFormHandler(s *store.Store) *FormHandler {
	return &FormHandler{store: s}
}

type createFormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateForm handles POST /v1/forms.
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	form, err := h.store.CreateForm(r.Context(), req.Name, req.Description)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

// GetForm handles GET /v1/forms/{form_id}.
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	form, err := h.store.GetForm(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// ListForms handles GET /v1/forms.
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.store.ListForms(r.Context())
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": forms})
}

// DeleteForm handles DELETE /v1/forms/{form_id}. Fields and submissions go
// with the form.
func (h *FormHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	if err := h.store.DeleteForm(r.Context(), id); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importFormRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Fields      []field.Definition `json:"fields"`
}

// ImportForm handles POST /v1/forms/import: a whole form definition in one
// payload, checked against the authoring schema before anything is written.
func (h *FormHandler) ImportForm(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "reading request body")
		return
	}

	if err := schema.ValidateDefinition(body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "SCHEMA_ERROR", err.Error())
		return
	}

	var req importFormRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	ctx := r.Context()
	form, err := h.store.CreateForm(ctx, req.Name, req.Description)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	fs := h.store.FieldStore(form.ID)
	for _, def := range req.Fields {
		d := editor.Draft{Def: def}
		if errs := d.Validate(); len(errs) > 0 {
			// Schema validation already covered structure; this catches
			// editor-level rules like commas in option values.
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "invalid field definition: " + def.Label,
				"code":   "VALIDATION_ERROR",
				"fields": errs,
			})
			return
		}
		if _, err := fs.Add(ctx, d.Normalize()); err != nil {
			storeErrorToHTTP(w, err)
			return
		}
	}

	form, err = h.store.GetForm(ctx, form.ID)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

// AddField handles POST /v1/forms/{form_id}/fields.
func (h *FormHandler) AddField(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	var def field.Definition
	if err := decodeJSON(r, &def); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	d := editor.Draft{Def: def}
	if errs := d.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "field definition is invalid",
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		})
		return
	}

	ctx := r.Context()
	b, err := h.builder(ctx, w, formID)
	if err != nil {
		return
	}
	if err := b.AddField(ctx, d.Normalize()); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"fields": b.Fields()})
}

// UpdateField handles PATCH /v1/forms/{form_id}/fields/{field_id}.
func (h *FormHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	fieldID, ok := parseID(w, r, "field_id")
	if !ok {
		return
	}
	var def field.Definition
	if err := decodeJSON(r, &def); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	d := editor.Draft{Def: def}
	if errs := d.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "field definition is invalid",
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		})
		return
	}

	ctx := r.Context()
	b, err := h.builder(ctx, w, formID)
	if err != nil {
		return
	}
	if err := b.UpdateField(ctx, fieldID, d.Normalize()); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": b.Fields()})
}

// DeleteField handles DELETE /v1/forms/{form_id}/fields/{field_id}.
func (h *FormHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	fieldID, ok := parseID(w, r, "field_id")
	if !ok {
		return
	}

	ctx := r.Context()
	b, err := h.builder(ctx, w, formID)
	if err != nil {
		return
	}
	if err := b.DeleteField(ctx, fieldID); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": b.Fields()})
}

type moveFieldRequest struct {
	Direction string `json:"direction"`
}

// MoveField handles POST /v1/forms/{form_id}/fields/{field_id}/move.
// Moving the first field up or the last field down is a silent no-op.
func (h *FormHandler) MoveField(w http.ResponseWriter, r *http.Request) {
	formID, ok := parseID(w, r, "form_id")
	if !ok {
		return
	}
	fieldID, ok := parseID(w, r, "field_id")
	if !ok {
		return
	}
	var req moveFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	var dir builder.Direction
	switch req.Direction {
	case "up":
		dir = builder.MoveUp
	case "down":
		dir = builder.MoveDown
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "direction must be \"up\" or \"down\"")
		return
	}

	ctx := r.Context()
	b, err := h.builder(ctx, w, formID)
	if err != nil {
		return
	}
	if err := b.Move(ctx, fieldID, dir); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": b.Fields()})
}

// builder loads the form's field list into a Builder, mapping a missing
// form to 404. On error it has already written the response.
func (h *FormHandler) builder(ctx context.Context, w http.ResponseWriter, formID string) (*builder.Builder, error) {
	if _, err := h.store.GetForm(ctx, formID); err != nil {
		storeErrorToHTTP(w, err)
		return nil, err
	}
	b, err := builder.New(ctx, h.store.FieldStore(formID))
	if err != nil {
		storeErrorToHTTP(w, err)
		return nil, err
	}
	return b, nil
}

// storeErrorToHTTP maps store errors to appropriate HTTP responses.
func storeErrorToHTTP(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not found")
		return
	}
	log.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
