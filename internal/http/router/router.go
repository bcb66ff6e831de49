// Package router wires the handlers into one http.Handler.
//
// Route table:
//
//	GET    /students        → list students, optionally filtered
//	POST   /students        → add a student
//	DELETE /students/{id}   → delete a student
//	POST   /ask-llm         → answer a question about the data
//	GET    /health          → liveness probe
//	GET    /metrics         → Prometheus metrics
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/aanand-mishra/students-records/internal/http/handlers/ask"
	"github.com/aanand-mishra/students-records/internal/http/handlers/student"
	"github.com/aanand-mishra/students-records/internal/metrics"
	"github.com/aanand-mishra/students-records/internal/utils/response"
)

// Deps are the collaborators the routes close over.
type Deps struct {
	Registry interface {
		student.Registry
		ask.Source
	}
	Answerer       ask.Answerer
	Metrics        *metrics.Collector
	AllowedOrigins []string
	Log            *slog.Logger
}

// New builds the API handler. Requests pass through metrics, then
// logging, then CORS, then the mux.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /students", student.GetList(d.Registry, d.Log))
	mux.HandleFunc("POST /students", student.New(d.Registry, d.Log))
	mux.HandleFunc("DELETE /students/{id}", student.Delete(d.Registry, d.Log))
	mux.HandleFunc("POST /ask-llm", ask.Handle(d.Registry, d.Answerer, d.Log))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	var h http.Handler = mux
	h = cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(h)
	h = logRequests(d.Log)(h)
	h = d.Metrics.Middleware(h)
	return h
}

func logRequests(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
