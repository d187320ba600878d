package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"nightfall/internal/game"
	"nightfall/internal/session"
)

type createRoomRequest struct {
	Name        string `json:"roomName"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
}

type seatResponse struct {
	RoomID        string          `json:"roomId"`
	ParticipantID string          `json:"participantId"`
	Passcode      string          `json:"passcode,omitempty"`
	State         *game.RoomState `json:"state"`
}

// CreateRoom creates a room with the caller as host
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	req.HostName = strings.TrimSpace(req.HostName)
	if req.HostName == "" {
		badRequest(w, "hostName is required")
		return
	}

	out, err := h.manager.CreateRoom(r.Context(), &session.CreateRoomInput{
		Name:        req.Name,
		HostName:    req.HostName,
		PlayerCount: req.PlayerCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	setSeatCookie(w, r, out.RoomID, out.SeatToken)
	writeJSON(w, http.StatusCreated, seatResponse{
		RoomID:        out.RoomID,
		ParticipantID: out.HostID,
		Passcode:      out.Passcode,
		State:         game.View(out.State, out.HostID, h.manager.Catalog()),
	})
}

type joinRoomRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

// JoinRoom seats the caller, or hands back the seat their cookie holds
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := strings.ToUpper(chi.URLParam(r, "id"))

	var req joinRoomRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	existing := seatToken(r, roomID)
	if existing == "" && strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}

	out, err := h.manager.Join(r.Context(), &session.JoinInput{
		RoomID:    roomID,
		Name:      req.Name,
		Passcode:  req.Passcode,
		SeatToken: existing,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	setSeatCookie(w, r, roomID, out.SeatToken)
	writeJSON(w, http.StatusOK, seatResponse{
		RoomID:        roomID,
		ParticipantID: out.ParticipantID,
		State:         game.View(out.State, out.ParticipantID, h.manager.Catalog()),
	})
}

// GetRoom returns the room as the caller may see it
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room.View(pid))
}

// AddBot seats a bot
func (h *Handler) AddBot(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	state, err := room.AddBot(r.Context(), pid)
	h.respond(w, state, pid, err)
}

type distributionRequest struct {
	Roles game.RoleDistribution `json:"roles"`
}

// SetDistribution replaces the role distribution
func (h *Handler) SetDistribution(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	var req distributionRequest
	if err := decodeBody(r, &req); err != nil || req.Roles == nil {
		badRequest(w, "roles are required")
		return
	}
	state, err := room.SetDistribution(r.Context(), pid, req.Roles)
	h.respond(w, state, pid, err)
}

// ApplyTemplate resets the distribution to the template for the roster size
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	state, err := room.ApplyTemplate(r.Context(), pid)
	h.respond(w, state, pid, err)
}

// StartGame deals the roles
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	log.Printf("🚀 Start requested for room %s by %s", room.ID(), pid)
	state, err := room.Start(r.Context(), pid)
	h.respond(w, state, pid, err)
}

type actionRequest struct {
	TargetID string `json:"targetId"`
}

// SubmitAction records a night target or a vote
func (h *Handler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if err := decodeBody(r, &req); err != nil || req.TargetID == "" {
		badRequest(w, "targetId is required")
		return
	}
	state, err := room.Act(r.Context(), pid, req.TargetID)
	h.respond(w, state, pid, err)
}

// ToggleSkip flips the caller's agreement to end the discussion
func (h *Handler) ToggleSkip(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	state, err := room.ToggleSkip(r.Context(), pid)
	h.respond(w, state, pid, err)
}

type messageRequest struct {
	Channel game.Channel `json:"channel"`
	Text    string       `json:"content"`
}

// PostMessage appends a chat message
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Channel == "" {
		req.Channel = game.ChannelPublic
	}
	state, err := room.Post(r.Context(), pid, req.Channel, req.Text)
	h.respond(w, state, pid, err)
}

// Rematch sends a finished room back to setup
func (h *Handler) Rematch(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	state, err := room.Rematch(r.Context(), pid)
	h.respond(w, state, pid, err)
}

// CloseRoom stops a room and deletes it. Host only.
func (h *Handler) CloseRoom(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	if !room.Snapshot().IsHost(pid) {
		writeError(w, session.ErrNotHost)
		return
	}
	if err := h.manager.CloseRoom(r.Context(), room.ID()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
