package response

import (
	"encoding/json"
	"net/http"

	"github.com/amankv/dime-backend/pkg/logger"
)

// WriteJSON writes the payload as-is. The dashboard frontend consumes the
// response shapes directly ({"transactions": [...]}, {"cards": [...]}),
// so there is no success envelope.
func (h *responseHandler) WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Last-ditch logging; can't return an error now
		log := logger.FromContext(r.Context())
		log.Error("failed to encode response", "error", err, "status", status)
	}
}
