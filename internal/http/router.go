package http

import (
	"net/http"

	"service-transport/internal/http/handlers"
)

type Router struct {
	mux *http.ServeMux
}

func NewRouter(slotHandler *handlers.SlotHandler, reportHandler *handlers.ReportHandler) *Router {
	mux := http.NewServeMux()
	slotHandler.Register(mux)
	reportHandler.Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return &Router{mux: mux}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}
