package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		RequestID(),
		Logging(h.logger),
	)

	// Assist
	mux.Handle("POST /api/v1/assist", chain(http.HandlerFunc(h.Assist)))

	// History
	mux.Handle("GET /api/v1/requests", chain(http.HandlerFunc(h.ListRequests)))
	mux.Handle("GET /api/v1/requests/{id}", chain(http.HandlerFunc(h.GetRequest)))

	// Performance
	mux.Handle("POST /api/v1/students/{id}/performance", chain(http.HandlerFunc(h.RecordPerformance)))

	// Quiz
	mux.Handle("POST /api/v1/quiz/evaluate", chain(http.HandlerFunc(h.EvaluateQuiz)))

	// Health и metrics
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime).Round(time.Second))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
}
