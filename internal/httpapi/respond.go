package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the JSON error envelope for the checkout endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the envelope the contact/reservation endpoints use
// for both success and failure bodies.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, MessageResponse{Message: message})
}
