package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"reporter/src/api/controllers"
	handlers "reporter/src/api/handlers"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler
}

func NewServer(controller controllers.IController) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handlers.NewHandler(controller),
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/scheduler", func(r chi.Router) {
		r.Post("/run", s.Handler.ExecuteScheduledReports)
		r.Get("/status", s.Handler.GetSchedulerStatus)
		r.Put("/reports/{fileName}", s.Handler.SaveReportDefinition)
		r.Delete("/reports/{fileName}", s.Handler.DeleteReportDefinition)
		r.Put("/index", s.Handler.SaveReportsIndex)
	})

	s.Router.Route("/api/operations", func(r chi.Router) {
		r.Post("/{identifier}/begin", s.Handler.BeginOperation)
		r.Post("/{identifier}/end", s.Handler.EndOperation)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:        ":" + port,
		ReadTimeout: 30 * time.Second,
		Handler:     server,
	}
	return httpServer
}
