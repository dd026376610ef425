package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightpanel/lightpaneld/internal/gradient"
)

func validPreset() gradient.Preset {
	return gradient.Preset{
		Name:     "sunset",
		DeviceID: "wled-1",
		Zones: []gradient.Zone{
			{Start: 0, Stop: 29, Color: [3]int{255, 120, 0}},
		},
	}
}

func TestExportGradient(t *testing.T) {
	srv := testServer(t)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/gradients/export", validPreset())
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	blob := resp.Data.(map[string]any)
	assert.Equal(t, "sunset", blob["name"])
	assert.Equal(t, "wled-1", blob["deviceId"])
	assert.NotEmpty(t, blob["id"])
	assert.NotEmpty(t, blob["createdAt"])
}

func TestExportGradientValidation(t *testing.T) {
	srv := testServer(t)

	p := validPreset()
	p.Zones = nil

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/gradients/export", p)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "at least one zone")
}

func TestImportGradientRoundTrip(t *testing.T) {
	srv := testServer(t)

	// Export, then import the blob back
	_, resp := doJSON(t, srv, http.MethodPost, "/api/gradients/export", validPreset())
	blob, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/gradients/import", bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var imported Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	assert.Equal(t, "sunset", imported.Data.(map[string]any)["name"])

	// Both saves are listed
	_, listResp := doJSON(t, srv, http.MethodGet, "/api/gradients", nil)
	assert.Len(t, listResp.Data.([]any), 1) // same id, upserted
}

func TestImportGradientMalformedJSONIsReported(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/gradients/import", bytes.NewReader([]byte(`{"name": "broken"`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "malformed gradient file")
}

func TestImportGradientShapeViolationIsReported(t *testing.T) {
	srv := testServer(t)

	blob := []byte(`{"name": "n", "deviceId": "d", "zones": [{"start": 9, "stop": 2, "color": [0,0,0]}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/gradients/import", bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "stop must be >= start")
}

func TestDeleteGradient(t *testing.T) {
	srv := testServer(t)

	_, resp := doJSON(t, srv, http.MethodPost, "/api/gradients/export", validPreset())
	id := resp.Data.(map[string]any)["id"].(string)

	rec, _ := doJSON(t, srv, http.MethodDelete, "/api/gradients/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/gradients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
