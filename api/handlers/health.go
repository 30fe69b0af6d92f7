package handlers

import (
	"encoding/json"
	"net/http"
)

// Healthz reports liveness. It carries no auth and touches no storage.
func Healthz() http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
