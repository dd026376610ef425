package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightpanel/lightpaneld/internal/config"
	"github.com/lightpanel/lightpaneld/internal/entertainment"
	"github.com/lightpanel/lightpaneld/internal/geometry"
	"github.com/lightpanel/lightpaneld/internal/gradient"
	"github.com/lightpanel/lightpaneld/internal/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	db, err := storage.Open(t.TempDir() + "/panel.sqlite")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewStore(db.DB)
	areas := entertainment.NewManager(nil, nil, store, time.Minute)
	gradients := gradient.NewStore(storage.NewBucket(db.DB, gradient.BucketName))

	h := NewHandler(nil, areas, gradients, nil, nil)
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, h, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, payload any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec, resp
}

func startSession(t *testing.T, srv *Server, templateID string) string {
	t.Helper()

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard", map[string]string{"templateId": templateID})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	return data["id"].(string)
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	rec, resp := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestGetTemplates(t *testing.T) {
	srv := testServer(t)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/entertainment/templates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	list := resp.Data.([]any)
	assert.Len(t, list, 5)
}

func TestStartWizardValidation(t *testing.T) {
	srv := testServer(t)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "templateId is required")

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard", map[string]string{"templateId": "penthouse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "unknown room template")
}

func TestWizardUnknownSession(t *testing.T) {
	srv := testServer(t)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/entertainment/wizard/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestWizardNextIsGated(t *testing.T) {
	srv := testServer(t)
	id := startSession(t, srv, "tv-setup")

	// Step 1 without a name: advancing must fail
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard/"+id+"/next", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)

	// Name it and advance
	rec, _ = doJSON(t, srv, http.MethodPut, "/api/entertainment/wizard/"+id+"/name", map[string]string{"name": "TV wall"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard/"+id+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["step"])
	assert.Equal(t, "select_lights", data["stepName"])
}

func TestWizardBackAlwaysAllowed(t *testing.T) {
	srv := testServer(t)
	id := startSession(t, srv, "tv-setup")

	doJSON(t, srv, http.MethodPut, "/api/entertainment/wizard/"+id+"/name", map[string]string{"name": "x"})
	doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard/"+id+"/next", nil)

	rec, resp := doJSON(t, srv, http.MethodPost, "/api/entertainment/wizard/"+id+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["step"])
}

func TestWizardPositionFlow(t *testing.T) {
	srv := testServer(t)
	id := startSession(t, srv, "living-room")
	base := "/api/entertainment/wizard/" + id

	doJSON(t, srv, http.MethodPut, base+"/name", map[string]string{"name": "Living room"})
	rec, _ := doJSON(t, srv, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	lights := map[string]any{"lights": []geometry.LightRef{
		{ID: "1", Name: "Left"},
		{ID: "2", Name: "Right"},
	}}
	rec, _ = doJSON(t, srv, http.MethodPut, base+"/lights", lights)
	require.Equal(t, http.StatusOK, rec.Code)

	// Entering step 3 with no positions generates circle defaults
	rec, resp := doJSON(t, srv, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	positions := data["positions"].([]any)
	require.Len(t, positions, 2)

	first := positions[0].(map[string]any)
	assert.InDelta(t, 0.75, first["x"].(float64), 1e-9)

	// Programmatic write clamps out-of-range coordinates
	rec, resp = doJSON(t, srv, http.MethodPut, base+"/positions/1", map[string]float64{"x": 3.5, "y": -0.25, "z": 0})
	require.Equal(t, http.StatusOK, rec.Code)

	data = resp.Data.(map[string]any)
	for _, p := range data["positions"].([]any) {
		pos := p.(map[string]any)
		if pos["lightId"] == "1" {
			assert.Equal(t, 1.0, pos["x"])
			assert.Equal(t, -0.25, pos["y"])
		}
	}

	// Rectangle arrangement replaces every position. With two lights each
	// takes its own side, centered: top then right.
	rec, resp = doJSON(t, srv, http.MethodPost, base+"/arrange", map[string]string{"arrangement": "rectangle"})
	require.Equal(t, http.StatusOK, rec.Code)

	data = resp.Data.(map[string]any)
	first = data["positions"].([]any)[0].(map[string]any)
	assert.Equal(t, 0.0, first["x"])
	assert.Equal(t, 0.8, first["y"])

	second := data["positions"].([]any)[1].(map[string]any)
	assert.Equal(t, 0.8, second["x"])
	assert.Equal(t, 0.0, second["y"])
}

func TestWizardDragEndpoints(t *testing.T) {
	srv := testServer(t)
	id := startSession(t, srv, "living-room")
	base := "/api/entertainment/wizard/" + id

	doJSON(t, srv, http.MethodPut, base+"/name", map[string]string{"name": "r"})
	doJSON(t, srv, http.MethodPost, base+"/next", nil)
	doJSON(t, srv, http.MethodPut, base+"/lights", map[string]any{"lights": []geometry.LightRef{{ID: "1", Name: "L"}}})
	doJSON(t, srv, http.MethodPost, base+"/next", nil)

	// Move to a known spot first
	doJSON(t, srv, http.MethodPut, base+"/positions/1", map[string]float64{"x": 0, "y": 0, "z": 0})

	// Grab at canvas center, drag to the right
	rec, resp := doJSON(t, srv, http.MethodPost, base+"/drag/start", map[string]any{
		"lightId": "1", "pointerX": 200.0, "pointerY": 200.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", resp.Data.(map[string]any)["dragging"])

	rec, resp = doJSON(t, srv, http.MethodPost, base+"/drag/move", map[string]any{
		"pointerX": 200.0 + 0.5*170.0, "pointerY": 200.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	pos := resp.Data.(map[string]any)["positions"].([]any)[0].(map[string]any)
	assert.InDelta(t, 0.5, pos["x"].(float64), 1e-9)

	rec, resp = doJSON(t, srv, http.MethodPost, base+"/drag/end", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data.(map[string]any)["dragging"])

	// Position survives drag end
	pos = resp.Data.(map[string]any)["positions"].([]any)[0].(map[string]any)
	assert.InDelta(t, 0.5, pos["x"].(float64), 1e-9)

	// Move without an active drag is refused
	rec, _ = doJSON(t, srv, http.MethodPost, base+"/drag/move", map[string]any{"pointerX": 10.0, "pointerY": 10.0})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// Rapid overlapping position writes against one session are the drag
// workload; the per-session lock has to keep them from racing.
func TestWizardConcurrentPositionWrites(t *testing.T) {
	srv := testServer(t)
	id := startSession(t, srv, "free-placement")
	base := "/api/entertainment/wizard/" + id

	doJSON(t, srv, http.MethodPut, base+"/lights", map[string]any{"lights": []geometry.LightRef{
		{ID: "1", Name: "Left"},
		{ID: "2", Name: "Right"},
	}})

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()

			lightID := "1"
			if g == 1 {
				lightID = "2"
			}
			for i := 0; i < 200; i++ {
				body, _ := json.Marshal(map[string]float64{
					"x": float64(i%9)/10 - 0.4,
					"y": 0.2,
					"z": 0,
				})
				req := httptest.NewRequest(http.MethodPut, base+"/positions/"+lightID, bytes.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()
				srv.Echo().ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("position write returned %d: %s", rec.Code, rec.Body.String())
					return
				}
			}
		}(g)
	}
	wg.Wait()

	rec, resp := doJSON(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	positions := resp.Data.(map[string]any)["positions"].([]any)
	assert.Len(t, positions, 2)
	for _, p := range positions {
		pos := p.(map[string]any)
		assert.GreaterOrEqual(t, pos["x"].(float64), -1.0)
		assert.LessOrEqual(t, pos["x"].(float64), 1.0)
	}
}

func TestWizardCloseSession(t *testing.T) {
	srv := testServer(t)
	id := startSession(t, srv, "desk")

	rec, _ := doJSON(t, srv, http.MethodDelete, "/api/entertainment/wizard/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/entertainment/wizard/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRuleValidationBlocksSubmission(t *testing.T) {
	srv := testServer(t)

	// Missing everything: the handler must reject locally. A nil bridge
	// client would panic if the request ever reached the network.
	rec, resp := doJSON(t, srv, http.MethodPost, "/api/rules", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "at least one condition")
	assert.Contains(t, resp.Error, "at least one action")
}
