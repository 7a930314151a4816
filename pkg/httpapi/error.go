// Package httpapi writes the JSON bodies of the HTTP API.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the body of errors raised outside a resource handler
// (auth, rate limiting, panics).
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Envelope is the body of every resource endpoint.
type Envelope struct {
	Status  bool              `json:"status"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

func WriteData(w http.ResponseWriter, status int, data any, message string) error {
	return WriteJSON(w, status, &Envelope{Status: true, Data: data, Message: message})
}

func WriteFailure(w http.ResponseWriter, status int, message string, fields map[string]string) error {
	return WriteJSON(w, status, &Envelope{Status: false, Message: message, Errors: fields})
}
