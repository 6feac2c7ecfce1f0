package handlers

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response body for every endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respond(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Success: false, Message: message})
}

func respondValidation(w http.ResponseWriter, errs []string) {
	respond(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "invalid input",
		Errors:  errs,
	})
}
