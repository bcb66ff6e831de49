// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope for messages and errors:
//
//	{ "message": "Missing required fields!", "error": "field gmail is required" }
//
// Error carries detail and is omitted when empty.
type Response struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Message builds a Response with only a message.
func Message(msg string) Response {
	return Response{Message: msg}
}

// GeneralError wraps an unexpected error under a client-facing message.
//
//	response.WriteJSON(w, http.StatusInternalServerError,
//	    response.GeneralError("Failed to load students", err))
func GeneralError(msg string, err error) Response {
	return Response{
		Message: msg,
		Error:   err.Error(),
	}
}

// ValidationError turns validator field errors into one Response, one
// plain-English sentence per failing field joined with ", ".
//
//	{ "message": "Missing required fields!", "error": "field fullName is required, field gmail is required" }
func ValidationError(msg string, errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Message: msg,
		Error:   strings.Join(errMessages, ", "),
	}
}
