package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/binlid/internal/logging"
	"github.com/mesh-intelligence/binlid/internal/metrics"
	"github.com/mesh-intelligence/binlid/internal/sqlite"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

type testServer struct {
	t       *testing.T
	backend *sqlite.Backend
	handler http.Handler
}

func setupServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(types.Config{DBPath: types.MemoryPath}))
	t.Cleanup(func() { backend.Detach() })

	m := metrics.New()
	return &testServer{
		t:       t,
		backend: backend,
		handler: NewRouter(metrics.Instrument(backend, m), logging.Discard(), m, opts),
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) space(name string) types.SpaceResult {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/spaces", map[string]string{"name": name})
	require.Contains(s.t, []int{http.StatusCreated, http.StatusOK}, rec.Code, rec.Body.String())
	return decode[types.SpaceResult](s.t, rec)
}

func (s *testServer) item(name string, spaceID int64) types.ItemView {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/items", map[string]any{"name": name, "space_id": spaceID})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.ItemView](s.t, rec)
}

func TestSpacesEndpoints(t *testing.T) {
	s := setupServer(t, Options{})

	rec := s.do(http.MethodGet, "/api/spaces", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(http.MethodPost, "/api/spaces", map[string]string{"name": "Garage", "description": "cold"})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[types.SpaceResult](t, rec)
	assert.True(t, first.Created)
	assert.Equal(t, "Garage", first.Name)

	rec = s.do(http.MethodPost, "/api/spaces", map[string]string{"name": "Garage"})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[types.SpaceResult](t, rec)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)

	rec = s.do(http.MethodGet, "/api/spaces", nil)
	spaces := decode[[]types.Space](t, rec)
	require.Len(t, spaces, 1)
	assert.Equal(t, "cold", spaces[0].Description)
}

func TestRequestErrors(t *testing.T) {
	s := setupServer(t, Options{})
	garage := s.space("Garage")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		check  func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "missing name fails validation", method: http.MethodPost, path: "/api/spaces",
			body: map[string]string{"description": "x"}, status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := decode[errorResponse](t, rec)
				assert.Contains(t, body.Fields, "name")
			},
		},
		{
			name: "blank name is invalid input", method: http.MethodPost, path: "/api/spaces",
			body: map[string]string{"name": "   "}, status: http.StatusBadRequest,
		},
		{
			name: "malformed json", method: http.MethodPost, path: "/api/spaces",
			body: "{not json", status: http.StatusBadRequest,
		},
		{
			name: "item in unknown space", method: http.MethodPost, path: "/api/items",
			body: map[string]any{"name": "Bin lid", "space_id": 999}, status: http.StatusNotFound,
		},
		{
			name: "item without space", method: http.MethodPost, path: "/api/items",
			body: map[string]any{"name": "Bin lid"}, status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := decode[errorResponse](t, rec)
				assert.Contains(t, body.Fields, "space_id")
			},
		},
		{
			name: "missing item", method: http.MethodGet, path: "/api/items/42",
			status: http.StatusNotFound,
		},
		{
			name: "non-numeric item id", method: http.MethodGet, path: "/api/items/abc",
			status: http.StatusBadRequest,
		},
		{
			name: "move missing item", method: http.MethodPost, path: "/api/items/42/move",
			body: map[string]any{"to_space_id": garage.ID}, status: http.StatusNotFound,
		},
		{
			name: "history of missing item", method: http.MethodGet, path: "/api/items/42/moves",
			status: http.StatusNotFound,
		},
		{
			name: "bad space filter", method: http.MethodGet, path: "/api/items?space_id=x",
			status: http.StatusBadRequest,
		},
		{
			name: "unknown route", method: http.MethodGet, path: "/api/nope",
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func TestItemLifecycle(t *testing.T) {
	s := setupServer(t, Options{})
	garage := s.space("Garage")
	attic := s.space("Attic")

	rec := s.do(http.MethodPost, "/api/items", map[string]any{
		"name": "Bin lid", "space_id": garage.ID, "location_within_space": "back left",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[types.ItemView](t, rec)
	assert.Equal(t, "Garage", item.SpaceName)
	assert.Equal(t, "back left", item.LocationWithinSpace)

	drill := s.item("Drill", garage.ID)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/items/%d/move", item.ID), map[string]any{
		"to_space_id": attic.ID, "note": "spring clean",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[moveItemResponse](t, rec)
	assert.True(t, moved.Success)
	assert.Equal(t, garage.ID, moved.Move.FromSpaceID)
	assert.Equal(t, attic.ID, moved.Move.ToSpaceID)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/items/%d", item.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Attic", decode[types.ItemView](t, rec).SpaceName)

	rec = s.do(http.MethodGet, "/api/items", nil)
	all := decode[[]types.ItemView](t, rec)
	require.Len(t, all, 2)
	assert.Equal(t, item.ID, all[0].ID, "moved item is listed first")
	assert.Equal(t, drill.ID, all[1].ID)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/items?space_id=%d", garage.ID), nil)
	inGarage := decode[[]types.ItemView](t, rec)
	require.Len(t, inGarage, 1)
	assert.Equal(t, drill.ID, inGarage[0].ID)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/items?q=lid&space_id=%d", attic.ID), nil)
	found := decode[[]types.ItemView](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, item.ID, found[0].ID)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/items/%d/moves", item.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]types.Move](t, rec)
	require.Len(t, history, 1)
	assert.Equal(t, "spring clean", history[0].Note)
}

func TestMoveToUnknownSpace(t *testing.T) {
	s := setupServer(t, Options{})
	garage := s.space("Garage")
	item := s.item("Bin lid", garage.ID)

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/items/%d/move", item.ID), map[string]any{"to_space_id": 404})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/items/%d/moves", item.ID), nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchEndpoint(t *testing.T) {
	s := setupServer(t, Options{})
	garage := s.space("Garage")
	item := s.item("Bin lid", garage.ID)
	s.item("Paint tin", garage.ID)

	rec := s.do(http.MethodGet, "/api/search?q=bin+lid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]types.ItemView](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, item.ID, results[0].ID)
	assert.Equal(t, "Garage", results[0].SpaceName)

	for _, q := range []string{"", "%20%20"} {
		rec = s.do(http.MethodGet, "/api/search?q="+q, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/search?q=x&limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := setupServer(t, Options{})

	rec := s.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())

	require.NoError(t, s.backend.Detach())
	rec = s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDetachedBackendIsServerError(t *testing.T) {
	s := setupServer(t, Options{})
	require.NoError(t, s.backend.Detach())

	rec := s.do(http.MethodGet, "/api/spaces", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t, Options{})
	s.space("Garage")

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `binlid_http_requests_total{method="POST",route="/api/spaces`)
	assert.Contains(t, body, `binlid_operations_total{op="create_space",result="ok"} 1`)
}

func TestMiddleware(t *testing.T) {
	t.Run("request id assigned", func(t *testing.T) {
		s := setupServer(t, Options{})
		rec := s.do(http.MethodGet, "/healthz", nil)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})

	t.Run("request id echoed", func(t *testing.T) {
		s := setupServer(t, Options{})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("security headers", func(t *testing.T) {
		s := setupServer(t, Options{})
		rec := s.do(http.MethodGet, "/healthz", nil)
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors allows configured origin", func(t *testing.T) {
		s := setupServer(t, Options{CORSOrigins: "http://localhost:5173"})
		req := httptest.NewRequest(http.MethodGet, "/api/spaces", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rate limit", func(t *testing.T) {
		s := setupServer(t, Options{RateLimit: 1})
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodGet, "/healthz", nil).Code)
	})

	t.Run("body limit", func(t *testing.T) {
		s := setupServer(t, Options{BodyLimit: 32})
		rec := s.do(http.MethodPost, "/api/spaces", map[string]string{"name": strings.Repeat("x", 100)})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("panic recovered", func(t *testing.T) {
		h := recovery(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("item 1: %w", types.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("move: %w", types.ErrReferentialIntegrity), http.StatusUnprocessableEntity},
		{fmt.Errorf("name: %w", types.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("disk: %w", types.ErrStorageFailure), http.StatusInternalServerError},
		{types.ErrDetached, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
