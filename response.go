package swaggermcp

import (
	"encoding/json"
	"net/http"
)

// resultEnvelope is the envelope for successful endpoint responses.
// Wire format: {"result": ...}
type resultEnvelope struct {
	Result any `json:"result"`
}

// writeResult writes a successful {"result": ...} response.
func writeResult(w http.ResponseWriter, result any) error {
	w.Header().Set("Content-Type", "application/json")
	return writeJSONBody(w, resultEnvelope{Result: result})
}

// writeJSON writes an arbitrary payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return writeJSONBody(w, payload)
}

// jsonWriter is satisfied by http.ResponseWriter and allows testing.
type jsonWriter interface {
	Write([]byte) (int, error)
}

func writeJSONBody(w jsonWriter, payload any) error {
	return json.NewEncoder(w).Encode(payload)
}
