package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// internalErrorBody is written when a response value cannot be encoded.
var internalErrorBody = []byte(`{"success":false,"error":"internal server error"}` + "\n")

// writeJSON encodes v before committing the status so an encoding failure
// still produces a JSON body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.Write(internalErrorBody)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

func writeErrorWithData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message, Data: data})
}

// Number accepts a JSON number or a numeric string, as sent by HTML forms.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = 0
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", raw)
	}
	*n = Number(f)
	return nil
}
