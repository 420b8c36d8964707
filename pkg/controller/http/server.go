package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/posture/pkg/utils/logging"
	"github.com/secmon-lab/posture/pkg/utils/safe"
)

type Server struct {
	router  *chi.Mux
	hub     *Hub
	metrics http.Handler
}

type Options func(*Server)

// WithHub enables the websocket render stream. The hub must also be
// registered as an observer of the use case.
func WithHub(hub *Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithMetrics serves handler at /metrics
func WithMetrics(handler http.Handler) Options {
	return func(s *Server) {
		s.metrics = handler
	}
}

func New(uc DashboardUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		safe.Write(r.Context(), w, []byte("ok"))
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", initSessionHandler(uc))

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", renderHandler(uc))
			r.Delete("/", endSessionHandler(uc))
			r.Post("/reset", resetSessionHandler(uc))
			r.Put("/system", selectSystemHandler(uc))

			if s.hub != nil {
				r.Get("/ws", websocketHandler(uc, s.hub))
			}

			r.Route("/{collection}", func(r chi.Router) {
				r.Post("/", addRecordHandler(uc))
				r.Put("/filter", setFilterHandler(uc))
				r.Delete("/at/{position}", deleteAtHandler(uc))
				r.Delete("/{id}", deleteRecordHandler(uc))
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
