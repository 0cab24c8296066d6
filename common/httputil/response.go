package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape of every public endpoint: ok plus either a
// payload or an error, which is a message string or a per-field map.
type Envelope struct {
	OK    bool `json:"ok"`
	Error any  `json:"error,omitempty"`
	Data  any  `json:"data,omitempty"`
}

// RespondOK writes {"ok":true} with an optional data payload.
func RespondOK(w http.ResponseWriter, code int, data any) {
	RespondWithJSON(w, code, Envelope{OK: true, Data: data})
}

// RespondFailure writes {"ok":false,"error":detail}.
func RespondFailure(w http.ResponseWriter, code int, detail any) {
	RespondWithJSON(w, code, Envelope{OK: false, Error: detail})
}

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondFailure(w, code, message)
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"ok":false,"error":"internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
