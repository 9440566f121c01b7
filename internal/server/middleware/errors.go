package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iudanet/carekeeper/internal/syncerr"
	"github.com/iudanet/carekeeper/pkg/api"
)

// writeError пишет JSON ответ с ошибкой и ее классом
func writeError(w http.ResponseWriter, status int, kind syncerr.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg, Kind: string(kind)})
}
