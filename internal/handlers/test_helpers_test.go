package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"nightfall"
	"nightfall/internal/common/uuid"
	"nightfall/internal/config"
	"nightfall/internal/game"
	"nightfall/internal/session"
	"nightfall/internal/store"
)

// newTestHandler creates a handler over an in-memory manager with the
// phase clock stopped
func newTestHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.PublicURL = "https://nightfall.example"

	m, err := session.NewManager(&session.Config{
		Repository: store.NewMemoryStore(),
		Catalog:    game.MustLoadCatalog(nightfall.RoleCatalogYAML),
		Settings: session.Settings{
			Timings: game.Timings{NightSeconds: 30, DaySeconds: 30, VoteSeconds: 30, MaxParticipants: 20},
			Seed:    7,
		},
		IDs: &uuid.Sequence{Prefix: "id"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	h := New(m, cfg)
	router := SetupRouter(h, cfg, &RouterOptions{DisableRateLimiting: true, DisableRequestLogger: true})
	return h, router
}

// apiCall sends a JSON request through the router, presenting the seat
// cookie when token is set
func apiCall(t *testing.T, router http.Handler, method, path, roomID, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: seatCookieName(roomID), Value: token})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) *game.RoomState {
	t.Helper()
	var s game.RoomState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), rec.Body.String())
	return &s
}

// testSeat is a seat as a client holds it: the response body and the token
// from the seat cookie
type testSeat struct {
	seatResponse
	Token string
}

func decodeSeat(t *testing.T, rec *httptest.ResponseRecorder) testSeat {
	t.Helper()
	var out testSeat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.seatResponse), rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == seatCookieName(out.RoomID) {
			out.Token = c.Value
		}
	}
	require.NotEmpty(t, out.Token, "no seat cookie")
	return out
}

// createRoom creates a room through the API and returns the host's seat
func createRoom(t *testing.T, router http.Handler, playerCount int) testSeat {
	t.Helper()
	rec := apiCall(t, router, http.MethodPost, "/api/rooms", "", "", createRoomRequest{
		Name:        "Moonlit",
		HostName:    "Alice",
		PlayerCount: playerCount,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeSeat(t, rec)
}
