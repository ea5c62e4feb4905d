// Package api wires the HTTP routes onto the lesson and order repositories.
package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	_ "lessonhub/docs"
	"lessonhub/pkg/lesson"
	"lessonhub/pkg/logger"
	"lessonhub/pkg/metrics"
	"lessonhub/pkg/order"
	"lessonhub/pkg/otel"
)

// Config holds the server dependencies. Notifier, Metrics, Tracer and Checks
// are optional.
type Config struct {
	Log       *logger.Logger
	Lessons   lesson.Repository
	Orders    order.Repository
	Notifier  order.Notifier
	ImagesDir string
	Metrics   *metrics.Metrics
	Tracer    trace.Tracer
	Origins   []string
	Checks    []HealthCheck
}

// Server serves the lessonhub HTTP API.
type Server struct {
	log       *logger.Logger
	lessons   lesson.Repository
	orders    order.Repository
	notifier  order.Notifier
	imagesDir string
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	origins   []string
	checks    []HealthCheck
}

// NewServer validates cfg and returns a Server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Lessons == nil {
		return nil, errors.New("lesson repository is required")
	}
	if cfg.Orders == nil {
		return nil, errors.New("order repository is required")
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewNop()
	}
	if cfg.ImagesDir == "" {
		cfg.ImagesDir = "images"
	}

	return &Server{
		log:       cfg.Log,
		lessons:   cfg.Lessons,
		orders:    cfg.Orders,
		notifier:  cfg.Notifier,
		imagesDir: cfg.ImagesDir,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		origins:   cfg.Origins,
		checks:    cfg.Checks,
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = s.cors(h)
	h = s.logRequests(h)
	h = s.requestID(h)
	h = s.recoverPanics(h)
	return otelhttp.NewHandler(h, "lessonhub")
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	if s.tracer != nil {
		r.Use(s.traceMiddleware)
	}

	r.HandleFunc("/lessons", s.handle("Failed to fetch lessons", s.listLessons)).Methods(http.MethodGet)
	r.HandleFunc("/lessons/{id}", s.handle("Failed to update lesson", s.updateLesson)).Methods(http.MethodPut)
	r.HandleFunc("/search", s.handle("Search failed", s.searchLessons)).Methods(http.MethodGet)
	r.HandleFunc("/orders", s.handle("Failed to insert document", s.createOrder)).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}", s.handle("Failed to fetch order", s.getOrder)).Methods(http.MethodGet)
	r.HandleFunc("/images/{img}", s.handle("Failed to read image", s.getImage)).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/healthz", s.liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readiness).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, MessageResponse{Message: "Method not allowed"})
	})

	return r
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), s.tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
