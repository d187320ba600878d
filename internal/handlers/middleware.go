package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// allowedSSEParams defines the whitelist of allowed query parameters for SSE endpoints
var allowedSSEParams = map[string]bool{
	"datastar": true, // Datastar automatically sends this with client state
}

// allowedDatastarSignals lists the signal names the room page sends back
var allowedDatastarSignals = map[string]bool{
	"theme": true,

	// Room signals patched by StreamRoom
	"phase":      true,
	"day":        true,
	"timer":      true,
	"winner":     true,
	"aliveCount": true,
	"closed":     true,
	"me":         true,

	// Client-side form state
	"targetId": true,
	"channel":  true,
	"content":  true,
}

const (
	maxSSEQueryLength     = 10000
	maxDatastarStateBytes = 8192
)

// ValidateSSERequest rejects stream requests carrying unexpected query
// parameters or datastar signals
func ValidateSSERequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.RawQuery) > maxSSEQueryLength {
			http.Error(w, "Query string too large", http.StatusRequestURITooLong)
			return
		}

		params, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			http.Error(w, "Invalid query parameters", http.StatusBadRequest)
			return
		}

		for key, values := range params {
			if !allowedSSEParams[key] {
				http.Error(w, "Invalid parameter", http.StatusBadRequest)
				return
			}
			if key == "datastar" {
				if msg := validateDatastarState(values); msg != "" {
					http.Error(w, msg, http.StatusBadRequest)
					return
				}
			}
		}

		next(w, r)
	}
}

// validateDatastarState checks the client state datastar sends with every
// request, returning a message when it must be rejected
func validateDatastarState(values []string) string {
	if len(values) != 1 {
		return "Invalid datastar parameter"
	}
	state := values[0]
	if len(state) > maxDatastarStateBytes {
		return "Datastar state too large"
	}
	if state == "" {
		return ""
	}

	var signals map[string]json.RawMessage
	if err := json.Unmarshal([]byte(state), &signals); err != nil {
		return "Invalid datastar JSON"
	}
	for name := range signals {
		if !allowedDatastarSignals[name] {
			return "Invalid signal in datastar: " + name
		}
	}
	return ""
}
