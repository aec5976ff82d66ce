// Package apierr is the JSON error envelope shared by the HTTP server and
// the client gateway:
//
//	{"status": 401, "type": "AuthError", "message": "...", "stack": "..."}
//
// stack is optional and only present on development servers.
package apierr

import (
	"encoding/json"
	"net/http"
)

// Error categories carried in Envelope.Type.
const (
	TypeTransport  = "TransportError"
	TypeValidation = "ValidationError"
	TypeAuth       = "AuthError"
	TypeConflict   = "ConflictError"
	TypeNotFound   = "NotFoundError"
	TypeInternal   = "InternalError"
)

// Messages the server answers with when it rejects a session cookie.
// Clients tell an expired session apart from a bad credential by these.
const (
	MsgSessionExpired = "Session expired"
	MsgInvalidToken   = "Unauthorized - invalid token"
)

type Envelope struct {
	Status  int    `json:"status"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// TypeForStatus picks the category a bare status code implies. Used when a
// response carries no parseable envelope.
func TypeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity, status == http.StatusRequestEntityTooLarge:
		return TypeValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return TypeAuth
	case status == http.StatusConflict:
		return TypeConflict
	case status == http.StatusNotFound:
		return TypeNotFound
	case status == 0:
		return TypeTransport
	default:
		return TypeInternal
	}
}

// Write sends an envelope with the given status.
func Write(w http.ResponseWriter, status int, typ, message string) {
	WriteEnvelope(w, Envelope{Status: status, Type: typ, Message: message})
}

func WriteEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.Status)
	json.NewEncoder(w).Encode(env)
}
