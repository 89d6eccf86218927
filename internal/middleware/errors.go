package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/socialvote/socialvote/internal/handler/dto"
)

// writeError writes a JSON error body in the same shape the handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.NewError(code, message))
}
