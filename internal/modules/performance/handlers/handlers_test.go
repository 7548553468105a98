package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/modules/capacity"
	"github.com/harborline/cargosim/internal/modules/performance"
	"github.com/harborline/cargosim/internal/modules/rooms"
	testutil "github.com/harborline/cargosim/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (chi.Router, *rooms.Repository) {
	t.Helper()
	game, cleanupGame := testutil.NewTestDB(t, "game")
	t.Cleanup(cleanupGame)
	ledger, cleanupLedger := testutil.NewTestDB(t, "ledger")
	t.Cleanup(cleanupLedger)
	cache, cleanupCache := testutil.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	roomRepo := rooms.NewRepository(game.Conn(), 4, zerolog.Nop())
	ledgerService := capacity.NewService(capacity.NewRepository(ledger.Conn(), zerolog.Nop()), roomRepo, nil, zerolog.Nop())
	service := performance.NewService(
		performance.NewRepository(cache.Conn(), zerolog.Nop()),
		ledgerService,
		nil,
		roomRepo,
		nil,
		zerolog.Nop(),
	)

	router := chi.NewRouter()
	NewHandler(service, zerolog.Nop()).RegisterRoutes(router)
	return router, roomRepo
}

func call(router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type summaryResponse struct {
	Data struct {
		Weeks          []map[string]interface{} `json:"weeks"`
		TotalRevenue   float64                  `json:"totalRevenue"`
		TotalPenalties float64                  `json:"totalPenalties"`
	} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) summaryResponse {
	t.Helper()
	var resp summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetWeeklyPerformance_PlaceholderWeeks(t *testing.T) {
	router, roomRepo := setupRouter(t)
	current, total := 2, 4
	_, err := roomRepo.UpdateRoom(context.Background(), "R1", rooms.UpdateRoomRequest{CurrentRound: &current, TotalRounds: &total})
	require.NoError(t, err)

	w := call(router, http.MethodGet, "/rooms/R1/users/5/weekly-performance", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	require.Len(t, resp.Data.Weeks, 4)
	assert.Equal(t, float64(0), resp.Data.Weeks[1]["revenue"])
	assert.Nil(t, resp.Data.Weeks[2]["revenue"])
	assert.Nil(t, resp.Data.Weeks[3]["rolledDryCommitted"])
	assert.Contains(t, resp.Data.Weeks[3], "rolledDryCommitted")
}

func TestMergeWeek(t *testing.T) {
	router, _ := setupRouter(t)

	w := call(router, http.MethodPatch, "/rooms/R1/users/5/weekly-performance/1", `{"weekData":{"revenue":900}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(router, http.MethodGet, "/rooms/R1/users/5/weekly-performance", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = call(router, http.MethodPatch, "/rooms/R1/users/5/weekly-performance/1", `{"weekData":{"revenue":900,"totalPenalty":100}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, float64(900), resp.Data.TotalRevenue)
	assert.Equal(t, float64(100), resp.Data.TotalPenalties)

	w = call(router, http.MethodGet, "/rooms/R1/users/5/weekly-performance/patches", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"week":1`)
}

func TestMergeWeek_BadRequests(t *testing.T) {
	router, _ := setupRouter(t)
	require.Equal(t, http.StatusOK, call(router, http.MethodGet, "/rooms/R1/users/5/weekly-performance", "").Code)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing weekData", "/rooms/R1/users/5/weekly-performance/1", `{}`},
		{"unknown field", "/rooms/R1/users/5/weekly-performance/1", `{"weekData":{"bonus":1}}`},
		{"week change", "/rooms/R1/users/5/weekly-performance/1", `{"weekData":{"weekNumber":3}}`},
		{"bad week", "/rooms/R1/users/5/weekly-performance/zero", `{"weekData":{"revenue":1}}`},
		{"bad user", "/rooms/R1/users/x/weekly-performance/1", `{"weekData":{"revenue":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(router, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestRebuild(t *testing.T) {
	router, _ := setupRouter(t)

	w := call(router, http.MethodPost, "/rooms/R1/users/5/weekly-performance/rebuild", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w).Data.Weeks, rooms.DefaultTotalRounds)
}
