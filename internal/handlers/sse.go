package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/a-h/templ"
	datastar "github.com/starfederation/datastar-go/datastar"
	"nightfall/internal/events"
	"nightfall/internal/game"
	"nightfall/internal/views"
)

// heartbeatInterval keeps idle SSE connections open; browsers may drop
// them after a few quiet minutes.
var heartbeatInterval = 30 * time.Second

// StreamRoom streams the caller's view of the room: signals for the phase
// clock and the caller's own seat, plus the narration and roster fragments.
func (h *Handler) StreamRoom(w http.ResponseWriter, r *http.Request) {
	room, pid, ok := h.seat(w, r)
	if !ok {
		return
	}
	roomID := room.ID()
	log.Printf("📡 SSE connection established for room %s (%s)", roomID, pid)

	// Subscribe before the first render so no commit falls in between
	bus := h.manager.Bus()
	updates := bus.Subscribe(roomID)
	defer bus.Unsubscribe(roomID, updates)

	sse := datastar.NewSSE(w, r)
	if err := h.sendView(sse, room.View(pid), pid); err != nil {
		log.Printf("📡 Initial render failed for room %s: %v", roomID, err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("📡 SSE context cancelled for room %s (%s)", roomID, pid)
			return
		case <-heartbeat.C:
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				log.Printf("📡 Keepalive failed for room %s: %v - closing connection", roomID, err)
				return
			}
		case event, open := <-updates:
			if !open {
				return
			}
			if event.Type == events.TypeClosed {
				sse.MarshalAndPatchSignals(map[string]interface{}{"closed": true})
				log.Printf("📡 Room %s closed, ending stream for %s", roomID, pid)
				return
			}
			view := game.View(event.State, pid, h.manager.Catalog())
			if err := h.sendView(sse, view, pid); err != nil {
				log.Printf("📡 Update failed for room %s: %v - closing connection", roomID, err)
				return
			}
		}
	}
}

// roomSignals flattens a projected snapshot into datastar signals
func roomSignals(view *game.RoomState, viewerID string) map[string]interface{} {
	alive := 0
	for _, p := range view.Participants {
		if p.Alive {
			alive++
		}
	}
	signals := map[string]interface{}{
		"phase":      view.Phase,
		"day":        view.Day,
		"timer":      view.Timer,
		"winner":     view.Winner,
		"aliveCount": alive,
		"closed":     false,
	}
	if me, ok := view.Participant(viewerID); ok {
		signals["me"] = map[string]interface{}{
			"id":         me.ID,
			"roleId":     me.RoleID,
			"alive":      me.Alive,
			"host":       me.Host,
			"acted":      me.Acted,
			"skipAgreed": me.SkipAgreed,
		}
	}
	return signals
}

func (h *Handler) sendView(sse *datastar.ServerSentEventGenerator, view *game.RoomState, viewerID string) error {
	if err := sse.MarshalAndPatchSignals(roomSignals(view, viewerID)); err != nil {
		return err
	}

	narration, err := renderToString(views.NarrationFeed(view.Narration, views.Names(view.Participants)))
	if err != nil {
		return err
	}
	if err := sse.PatchElements(narration, datastar.WithSelector("#narration")); err != nil {
		return err
	}

	roster, err := renderToString(views.Roster(view.Participants, h.manager.Catalog()))
	if err != nil {
		return err
	}
	return sse.PatchElements(roster, datastar.WithSelector("#roster"))
}

func renderToString(component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
