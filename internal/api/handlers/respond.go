package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode failed: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string, details string) {
	body := map[string]string{"error": msg}
	if details != "" {
		body["details"] = details
	}
	respondJSON(w, status, body)
}
