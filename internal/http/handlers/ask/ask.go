// Package ask serves POST /ask-llm.
//
// The endpoint always answers 200 with {"answer": "..."}. Bad input gets
// a prompt to ask something. Internal failures get the insight fallback
// sentence. Neither is ever surfaced as an error status.
package ask

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/students-records/internal/insight"
	"github.com/aanand-mishra/students-records/internal/types"
	"github.com/aanand-mishra/students-records/internal/utils/response"
)

// MsgNoQuestion answers an empty or unreadable request.
const MsgNoQuestion = "Please provide a question."

// Source supplies the collection the question is about.
type Source interface {
	Students(ctx context.Context) ([]types.Student, error)
}

// Answerer is implemented by insight.Responder.
type Answerer interface {
	Answer(ctx context.Context, question string, students []types.Student) insight.Answer
}

type request struct {
	Question string `json:"question"`
}

// Response is the body of every /ask-llm reply.
type Response struct {
	Answer string `json:"answer"`
}

// Handle answers a question about the current collection.
func Handle(src Source, ans Answerer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info("unreadable ask request", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusOK, Response{Answer: MsgNoQuestion})
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			response.WriteJSON(w, http.StatusOK, Response{Answer: MsgNoQuestion})
			return
		}

		students, err := src.Students(r.Context())
		if err != nil {
			log.Error("cannot load students for question", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusOK, Response{Answer: insight.FallbackAnswer})
			return
		}

		a := ans.Answer(r.Context(), req.Question, students)
		log.Info("question answered", slog.String("intent", string(a.Intent)))
		response.WriteJSON(w, http.StatusOK, Response{Answer: a.Text})
	}
}
