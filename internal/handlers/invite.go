package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// Invite serves a PNG QR code pointing at the room's join URL
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	roomID := strings.ToUpper(chi.URLParam(r, "id"))
	room, err := h.manager.Room(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}

	joinURL := h.joinURL(r, room.ID())
	png, err := generateQRCode(joinURL)
	if err != nil {
		log.Printf("❌ Failed to generate QR code for room %s: %v", room.ID(), err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate invite"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("X-Join-URL", joinURL)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// joinURL builds the link a new participant opens to join a room
func (h *Handler) joinURL(r *http.Request, roomID string) string {
	base := strings.TrimRight(h.config.Server.PublicURL, "/")
	if base == "" {
		base = getBaseURL(r)
	}
	return base + "/room/" + roomID
}

// generateQRCode renders url as a PNG QR code
func generateQRCode(url string) ([]byte, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	dir, err := os.MkdirTemp("", "nightfall-qr-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "invite.png")

	w, err := standard.New(path,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8), // 8 pixels per module
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}

	// Save closes the writer
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	return data, nil
}

// getBaseURL constructs the base URL from the request
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		host = forwardedHost
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}
