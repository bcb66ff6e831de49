// Package student contains the HTTP handlers for the /students resource.
//
// Handlers use the closure / factory pattern: each exported function
// receives its dependencies once at startup and returns the
// func(http.ResponseWriter, *http.Request) the router needs.
//
//	router.HandleFunc("POST /students", student.New(registry, log))
package student

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-records/internal/query"
	"github.com/aanand-mishra/students-records/internal/registry"
	"github.com/aanand-mishra/students-records/internal/types"
	"github.com/aanand-mishra/students-records/internal/utils/response"
)

// Client-facing messages. The browser client shows these verbatim.
const (
	MsgAdded          = "Student added successfully!"
	MsgDeleted        = "Student deleted successfully!"
	MsgMissingFields  = "Missing required fields!"
	MsgNotFound       = "Student not found!"
	MsgInvalidBody    = "Invalid request body"
	MsgStorageFailure = "Failed to access student records"
)

// Registry is what the handlers need from registry.Service.
type Registry interface {
	List(ctx context.Context, c types.Criteria) ([]types.Student, error)
	Add(ctx context.Context, candidate types.Student) (types.Student, error)
	Remove(ctx context.Context, rawID string) error
}

// Created is the body of a successful POST /students.
type Created struct {
	Message string        `json:"message"`
	Student types.Student `json:"student"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body (JSON), id is assigned by the server. Unknown fields are
// ignored and non-string values in text fields are kept as their JSON text:
//
//	{ "studentID": "2024-0001", "fullName": "Maria Clara", "gender": "Female",
//	  "gmail": "maria@gmail.com", "program": "BSIT", "yearLevel": "1st Year",
//	  "university": "PUP" }
//
// Responses:
//
//	200 OK           — { "message": "...", "student": { "id": ..., ... } }
//	400 Bad Request  — empty/malformed body, or a required field missing
//	500 Internal     — storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(reg Registry, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("creating a student")

		var candidate types.Student
		err := json.NewDecoder(r.Body).Decode(&candidate)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(MsgInvalidBody, errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(MsgInvalidBody, err))
			return
		}

		stored, err := reg.Add(r.Context(), candidate)
		if err != nil {
			var verrs validator.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(MsgMissingFields, verrs))
			case errors.Is(err, registry.ErrValidation):
				response.WriteJSON(w, http.StatusBadRequest, response.Message(MsgMissingFields))
			default:
				log.Error("error creating student", slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(MsgStorageFailure, err))
			}
			return
		}

		log.Info("student created", slog.Int64("id", stored.ID))
		response.WriteJSON(w, http.StatusOK, Created{Message: MsgAdded, Student: stored})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students?name=&program=&gender=
//
// All query parameters are optional. name and program match by
// case-insensitive substring, gender by case-insensitive equality; the
// ones given are combined with AND. Returns [] (not null) when nothing
// matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(reg Registry, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria := query.CriteriaFromQuery(r.URL.Query())
		log.Info("listing students",
			slog.String("name", criteria.Name),
			slog.String("program", criteria.Program),
			slog.String("gender", criteria.Gender))

		students, err := reg.List(r.Context(), criteria)
		if err != nil {
			log.Error("error listing students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(MsgStorageFailure, err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{id}
//
//	200 OK         — { "message": "Student deleted successfully!" }
//	404 Not Found  — no record has that id (including non-numeric ids)
//	500 Internal   — storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(reg Registry, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		log.Info("deleting a student", slog.String("id", id))

		if err := reg.Remove(r.Context(), id); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.Message(MsgNotFound))
				return
			}
			log.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(MsgStorageFailure, err))
			return
		}

		log.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message(MsgDeleted))
	}
}
