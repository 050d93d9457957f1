package server

import (
	"encoding/json"
	"net/http"
	"time"
)

const driveTokenHeader = "X-Drive-Access-Token"

func (s *Service) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

// parseDate accepts the wire format used for filing, event and send dates.
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
