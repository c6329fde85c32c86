package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newPassThroughStorer provides a store mock which accepts every call.
func newPassThroughStorer() *MockBookStorer {
	return &MockBookStorer{
		CreateFunc: func(ctx context.Context, payload BookPayload) (string, error) {
			return "b:abc", nil
		},
		ListFunc: func(ctx context.Context, filters BookFilters) []BookSummary {
			return []BookSummary{}
		},
		GetByIDFunc: func(ctx context.Context, id string) (Book, error) {
			return Book{ID: id}, nil
		},
		UpdateByIDFunc: func(ctx context.Context, id string, payload BookPayload) (Book, error) {
			return Book{ID: id}, nil
		},
		DeleteByIDFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
}

// TestSetupBookRoutes ensures all expected book endpoints are implemented.
func TestSetupBookRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"index endpoint",
			httptest.NewRequest(http.MethodGet, "/", nil),
			true,
		},
		{
			"status endpoint",
			httptest.NewRequest(http.MethodGet, "/status", nil),
			true,
		},
		{
			"create book endpoint",
			httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"A"}`)),
			true,
		},
		{
			"fetch all books endpoint",
			httptest.NewRequest(http.MethodGet, "/books", nil),
			true,
		},
		{
			"fetch all books endpoint with slash",
			httptest.NewRequest(http.MethodGet, "/books/", nil),
			true,
		},
		{
			"fetch single book endpoint",
			httptest.NewRequest(http.MethodGet, "/books/"+testBookID, nil),
			true,
		},
		{
			"update book endpoint",
			httptest.NewRequest(http.MethodPut, "/books/"+testBookID, strings.NewReader(`{"name":"A"}`)),
			true,
		},
		{
			"delete book endpoint",
			httptest.NewRequest(http.MethodDelete, "/books/"+testBookID, nil),
			true,
		},
		{
			"versioned books endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/books", nil),
			false,
		},
		{
			"unknown endpoint",
			httptest.NewRequest(http.MethodGet, "/bookz", nil),
			false,
		},
	}

	bs := NewBookService(zap.NewNop(), newPassThroughStorer(), nil)
	api := newTestAPIHandler(bs, NewMockUIDHandler("abc", true))
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupBookRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupOpsRoutes ensures all expected operations endpoints are implemented.
func TestSetupOpsRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"fetch configs endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			true,
		},
		{
			"fetch stats endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/stats", nil),
			true,
		},
		{
			"maintenance mode endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=disable", nil),
			true,
		},
		{
			"memory stats endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil),
			true,
		},
		{
			"mirrored books endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/mirror/books", nil),
			true,
		},
		{
			"invalid ops endpoint",
			httptest.NewRequest(http.MethodGet, "/ops", nil),
			false,
		},
		{
			"unknown ops endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/unknown", nil),
			false,
		},
		{
			"disabled profiler endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil),
			false,
		},
	}

	api := newTestAPIHandler(nil, nil)
	api.mirror = &MockBookMirror{
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
	}
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupOpsRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}

	t.Run("enabled profiler endpoint", func(t *testing.T) {
		api.config.ProfilerEnable = true
		defer func() { api.config.ProfilerEnable = false }()
		router := httprouter.New()
		api.SetupOpsRoutes(router, m)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/cmdline", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// TestSetupRoutes ensures all expected endpoints are implemented.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name               string
		OpsEndpointsEnable bool
		request            *http.Request
		implemented        bool
	}{
		{
			"ops disable:fetch configs endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			false,
		},
		{
			"ops enable:fetch configs endpoint",
			true,
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			true,
		},
		{
			"ops enable:disabled profiler endpoint",
			true,
			httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil),
			false,
		},
		{
			"ops disable:create book endpoint",
			false,
			httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"A"}`)),
			true,
		},
		{
			"ops enable:create book endpoint",
			true,
			httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"name":"A"}`)),
			true,
		},
		{
			"swagger endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil),
			true,
		},
		{
			"invalid ops endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/ops/", nil),
			false,
		},
	}

	config := &Config{Server: ServerConfig{LongRequestWriteTimeout: time.Second}}
	bs := NewBookService(zap.NewNop(), newPassThroughStorer(), nil)
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), NewMockUIDHandler("abc", true), bs, nil)
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()
			config.OpsEndpointsEnable = tc.OpsEndpointsEnable
			api.SetupRoutes(router, m)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes_NotFound ensures exact status code and json response body when a user requests an inexistant route.
func TestSetupRoutes_NotFound(t *testing.T) {
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api := newTestAPIHandler(nil, NewMockUIDHandler("abc", true))
	router := api.SetupRoutes(httprouter.New(), m)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x/books/", nil))
	assert.JSONEq(t, `{"status":"fail", "message":"Endpoint tidak ditemukan"}`, readResponse(t, w, http.StatusNotFound))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/books", nil))
	assert.JSONEq(t, `{"status":"fail", "message":"Metode tidak diizinkan"}`, readResponse(t, w, http.StatusMethodNotAllowed))
	assert.Contains(t, w.Header().Get("Allow"), http.MethodPost)
}

// TestBooksLifecycle runs a book through the full middlewares stack, from its
// creation until its deletion.
func TestBooksLifecycle(t *testing.T) {
	clock := NewMockClocker()
	store := NewBookStore(zap.NewNop(), clock, NewIDsHandler())
	queue, pushes := newRecordingQueuer()
	bs := NewBookService(zap.NewNop(), store, queue)
	api := newTestAPIHandler(bs, NewIDsHandler())
	public, ops := api.MiddlewaresStacks()
	router := api.SetupRoutes(httprouter.New(), &MiddlewareMap{public: public.Chain, ops: ops.Chain})

	call := func(method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		m := make(map[string]interface{})
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		return w, m
	}

	w, m := call(http.MethodPost, "/books", `{"name":"A","pageCount":100,"readPage":100}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id, ok := m["data"].(map[string]interface{})["bookId"].(string)
	require.True(t, ok)

	w, m = call(http.MethodGet, "/books/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	book := m["data"].(map[string]interface{})["book"].(map[string]interface{})
	assert.Equal(t, true, book["finished"])
	assert.Equal(t, id, book["id"])

	w, m = call(http.MethodGet, "/books?finished=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, m["data"].(map[string]interface{})["books"], 1)

	clock.Advance(time.Second)
	w, _ = call(http.MethodPut, "/books/"+id, `{"name":"B","pageCount":100,"readPage":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(http.MethodDelete, "/books/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, m = call(http.MethodGet, "/books/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Buku tidak ditemukan", m["message"])

	got := pushes()
	require.Len(t, got, 3)
	assert.Equal(t, CreateQueue, got[0].qid)
	assert.Equal(t, UpdateQueue, got[1].qid)
	assert.Equal(t, "B", got[1].book.Name)
	assert.Equal(t, DeleteQueue, got[2].qid)
	assert.Equal(t, id, got[2].book.ID)
	assert.Equal(t, uint64(6), api.stats.called)
}
