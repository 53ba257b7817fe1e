package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattlowe/formhall/internal/field"
	"github.com/mattlowe/formhall/internal/lookup"
	"github.com/mattlowe/formhall/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.Open("file:" + t.TempDir() + "/formhall.db")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	ts := httptest.NewServer(Router(Config{Store: st, ExportPageSize: 500}))
	t.Cleanup(ts.Close)
	return ts, st
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func createTestForm(t *testing.T, ts *httptest.Server) (formID string, fieldIDs []string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/forms", map[string]string{
		"name": "Membership Application",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	formID = body["id"].(string)

	for _, def := range []map[string]any{
		{"label": "Full Name", "field_type": "text", "required": true},
		{"label": "Shift", "field_type": "select", "options": []map[string]string{
			{"value": "am", "label": "Morning"},
			{"value": "pm", "label": "Afternoon"},
		}},
	} {
		resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/fields", def)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	fields := body["fields"].([]any)
	for _, f := range fields {
		fieldIDs = append(fieldIDs, f.(map[string]any)["id"].(string))
	}
	return formID, fieldIDs
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestFormLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, fieldIDs := createTestForm(t, ts)
	require.Len(t, fieldIDs, 2)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/forms/"+formID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fields := body["fields"].([]any)
	require.Len(t, fields, 2)
	assert.Equal(t, "Full Name", fields[0].(map[string]any)["label"])
	assert.Equal(t, "Shift", fields[1].(map[string]any)["label"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/forms", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["forms"].([]any), 1)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/v1/forms/"+formID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/forms/"+formID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddFieldRejectsMissingLabel(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, _ := createTestForm(t, ts)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/fields",
		map[string]any{"field_type": "text"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fieldErrs := body["fields"].(map[string]any)
	assert.Equal(t, "Label is required", fieldErrs["label"])
}

func TestMoveFieldAndEdgeNoOp(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, fieldIDs := createTestForm(t, ts)

	// Moving the first field up is a no-op.
	resp, body := doJSON(t, http.MethodPost,
		ts.URL+"/v1/forms/"+formID+"/fields/"+fieldIDs[0]+"/move",
		map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fields := body["fields"].([]any)
	assert.Equal(t, fieldIDs[0], fields[0].(map[string]any)["id"])

	resp, body = doJSON(t, http.MethodPost,
		ts.URL+"/v1/forms/"+formID+"/fields/"+fieldIDs[0]+"/move",
		map[string]string{"direction": "down"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fields = body["fields"].([]any)
	assert.Equal(t, fieldIDs[1], fields[0].(map[string]any)["id"])
	assert.Equal(t, fieldIDs[0], fields[1].(map[string]any)["id"])
}

func TestSubmitValidatesThenPersists(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, fieldIDs := createTestForm(t, ts)

	// Missing required field: rejected with a per-field error map.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/submissions",
		map[string]any{"values": map[string]string{}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fieldErrs := body["fields"].(map[string]any)
	assert.Equal(t, "Full Name is required", fieldErrs[fieldIDs[0]])

	// Valid submission persists.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/submissions",
		map[string]any{
			"submitter": "jane",
			"values": map[string]string{
				fieldIDs[0]: "Jane Doe",
				fieldIDs[1]: "am",
			},
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["id"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/forms/"+formID+"/submissions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])
	subs := body["submissions"].([]any)
	require.Len(t, subs, 1)

	sub := subs[0].(map[string]any)
	assert.Equal(t, "jane", sub["submitter"])
	rows := sub["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "Full Name", rows[0].(map[string]any)["label"])
	assert.Equal(t, "Jane Doe", rows[0].(map[string]any)["value"])
	assert.Equal(t, "Shift", rows[1].(map[string]any)["label"])
	assert.Equal(t, "am", rows[1].(map[string]any)["value"])
}

func TestSubmitSanitizesMarkup(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, fieldIDs := createTestForm(t, ts)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/submissions",
		map[string]any{
			"values": map[string]string{
				fieldIDs[0]: `<script>alert(1)</script>Jane`,
			},
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alert(1)Jane", data[fieldIDs[0]])
}

func TestDeleteSubmission(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, fieldIDs := createTestForm(t, ts)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/submissions",
		map[string]any{"values": map[string]string{fieldIDs[0]: "Jane Doe"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subID := body["id"].(string)

	resp, _ = doJSON(t, http.MethodDelete,
		ts.URL+"/v1/forms/"+formID+"/submissions/"+subID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/forms/"+formID+"/submissions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total"])
}

func TestExportCSV(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, fieldIDs := createTestForm(t, ts)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/forms/"+formID+"/submissions",
		map[string]any{
			"submitter": "jane",
			"values":    map[string]string{fieldIDs[0]: "Jane Doe", fieldIDs[1]: "am"},
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(ts.URL + "/v1/forms/" + formID + "/submissions/export?format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"),
		fmt.Sprintf("submissions-%s.csv", formID))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Submitted At","Submitter","Full Name","Shift"`, lines[0])
	assert.Contains(t, lines[1], `"Jane Doe","am"`)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	ts, _ := newTestServer(t)
	formID, _ := createTestForm(t, ts)

	resp, _ := doJSON(t, http.MethodGet,
		ts.URL+"/v1/forms/"+formID+"/submissions/export?format=pdf", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportForm(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := map[string]any{
		"name": "Event Signup",
		"fields": []map[string]any{
			{"label": "Full Name", "field_type": "text", "required": true},
			{"label": "Meal", "field_type": "radio", "options": []map[string]string{
				{"value": "veg", "label": "Vegetarian"},
				{"value": "std", "label": "Standard"},
			}},
		},
	}
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/forms/import", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, body["fields"].([]any), 2)

	// Unknown field type fails schema validation before anything is written.
	bad := map[string]any{
		"name":   "Bad",
		"fields": []map[string]any{{"label": "X", "field_type": "hologram"}},
	}
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/forms/import", bad)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/forms", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["forms"].([]any), 1)
}

func TestMemberSearch(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()
	for _, m := range []lookup.Member{
		{ID: field.NewID(), FullName: "Jane Doe", Rank: "Captain"},
		{ID: field.NewID(), FullName: "Janet Miller"},
		{ID: field.NewID(), FullName: "Bob Smith"},
	} {
		require.NoError(t, st.UpsertMember(ctx, m))
	}

	// Below the minimum query length: empty without a directory call.
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/members/search?q=j", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["members"].([]any))

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/members/search?q=jan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	members := body["members"].([]any)
	require.Len(t, members, 2)
	assert.Equal(t, "Jane Doe", members[0].(map[string]any)["full_name"])
}

func TestInvalidIDRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/forms/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", body["code"])
}
