package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/modules/rooms"
	testutil "github.com/harborline/cargosim/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	db, cleanup := testutil.NewTestDB(t, "game")
	t.Cleanup(cleanup)

	router := chi.NewRouter()
	NewHandler(rooms.NewRepository(db.Conn(), 4, zerolog.Nop()), zerolog.Nop()).RegisterRoutes(router)
	return router
}

func send(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoomEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := send(router, http.MethodPut, "/rooms/R1", `{"current_round":3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current_round":3`)

	w = send(router, http.MethodGet, "/rooms/R1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_rounds":4`)

	w = send(router, http.MethodPut, "/rooms/R1/users/5", `{"port":"sby"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"port":"SBY"`)

	w = send(router, http.MethodPut, "/rooms/R1/users/5", `{"port":"XXX"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(router, http.MethodPut, "/rooms/R1/users/5/revenue/2", `{"revenue":15000000}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(router, http.MethodPut, "/rooms/R1/users/5/revenue/2", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(router, http.MethodPut, "/rooms/R1/users/abc/revenue/2", `{"revenue":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
