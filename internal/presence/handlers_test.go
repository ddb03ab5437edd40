// internal/presence/handlers_test.go

package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, Service) {
	t.Helper()

	svc, _ := setupService(t)
	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(svc))

	return router, svc
}

func doGet(t *testing.T, router *mux.Router, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body.Data
}

func TestGetUserStatus(t *testing.T) {
	ctx := context.Background()
	router, svc := setupRouter(t)

	require.NoError(t, svc.SetOnline(ctx, "alice"))
	require.NoError(t, svc.JoinMatchingPool(ctx, "alice"))

	code, data := doGet(t, router, "/api/v1/presence/alice")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", data["user_id"])
	assert.Equal(t, string(StatusMatching), data["status"])
	assert.Equal(t, true, data["in_matching_pool"])
	assert.Equal(t, true, data["is_online"])
}

func TestGetUserStatusUnknownUser(t *testing.T) {
	router, _ := setupRouter(t)

	code, data := doGet(t, router, "/api/v1/presence/nobody")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "", data["status"])
	assert.Equal(t, false, data["in_matching_pool"])
	assert.Equal(t, false, data["is_online"])
}

func TestGetPoolCount(t *testing.T) {
	ctx := context.Background()
	router, svc := setupRouter(t)

	require.NoError(t, svc.JoinMatchingPool(ctx, "alice"))
	require.NoError(t, svc.JoinMatchingPool(ctx, "bob"))

	code, data := doGet(t, router, "/api/v1/presence/pool/count")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), data["matching_pool_count"])
}
