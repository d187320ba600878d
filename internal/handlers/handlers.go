package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"nightfall/internal/config"
	"nightfall/internal/game"
	"nightfall/internal/session"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	manager *session.Manager
	config  *config.ServerConfig
}

// New creates a new handler
func New(manager *session.Manager, cfg *config.ServerConfig) *Handler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handler{
		manager: manager,
		config:  cfg,
	}
}

// Manager returns the handler's room manager (for testing)
func (h *Handler) Manager() *session.Manager {
	return h.manager
}

func seatCookieName(roomID string) string {
	return "player_" + roomID
}

// setSeatCookie hands the caller the secret token for their seat in a room
func setSeatCookie(w http.ResponseWriter, r *http.Request, roomID, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     seatCookieName(roomID),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 2, // 2 days
	})
}

// seatToken reads the caller's seat token from the room cookie
func seatToken(r *http.Request, roomID string) string {
	cookie, err := r.Cookie(seatCookieName(roomID))
	if err != nil {
		return ""
	}
	return cookie.Value
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrRoomNotFound),
		errors.Is(err, game.ErrUnknownParticipant):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, game.ErrDeadParticipant),
		errors.Is(err, game.ErrChannelForbidden),
		errors.Is(err, session.ErrNotHost),
		errors.Is(err, session.ErrBadPasscode):
		return http.StatusForbidden
	case errors.Is(err, game.ErrDistributionMismatch),
		errors.Is(err, game.ErrUnknownRole),
		errors.Is(err, game.ErrNoDefaultDistribution),
		errors.Is(err, game.ErrInvalidDistribution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrEmptyMessage),
		errors.Is(err, session.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("❌ Request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// decodeBody reads a JSON request body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// seat resolves the room from the URL and the caller's participant from the
// seat token in their cookie, writing the error response itself when either
// is missing.
func (h *Handler) seat(w http.ResponseWriter, r *http.Request) (*session.Room, string, bool) {
	roomID := strings.ToUpper(chi.URLParam(r, "id"))
	room, err := h.manager.Room(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}
	token := seatToken(r, room.ID())
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not in room"})
		return nil, "", false
	}
	p, ok := room.Snapshot().Seat(token)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unknown seat"})
		return nil, "", false
	}
	return room, p.ID, true
}

// respond writes the viewer's projection of a transition result
func (h *Handler) respond(w http.ResponseWriter, state *game.RoomState, viewerID string, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.View(state, viewerID, h.manager.Catalog()))
}
