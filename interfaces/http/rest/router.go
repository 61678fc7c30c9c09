package rest

import (
	"context"
	"net/http"
	"time"

	"mindbloom-backend/application/services"
	"mindbloom-backend/interfaces/http/rest/handlers"
	"mindbloom-backend/interfaces/http/rest/middleware"
	"mindbloom-backend/pkg/common"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// ReadinessCheck reports whether the backing store is reachable.
type ReadinessCheck func(ctx context.Context) error

// Options configure the HTTP surface.
type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	Ready          ReadinessCheck
}

// Router creates and configures the HTTP router
type Router struct {
	services      *services.Services
	authenticator *middleware.Authenticator
	errs          *pkgerrors.ErrorHandler
	collector     *observability.Collector
	opts          Options
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	svcs *services.Services,
	authenticator *middleware.Authenticator,
	errs *pkgerrors.ErrorHandler,
	collector *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		services:      svcs,
		authenticator: authenticator,
		errs:          errs,
		collector:     collector,
		opts:          opts,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errs.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.collector))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, common.StandardErrorCodes.NotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusMethodNotAllowed, common.StandardErrorCodes.BadRequest, "Method not allowed")
	})

	router.Get("/", rt.root)
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", rt.collector.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(rt.authenticator.Authenticate)
		rt.mountAPI(r)
	})

	return router
}

func (rt *Router) mountAPI(r chi.Router) {
	s := rt.services

	r.Route("/auth", func(r chi.Router) {
		h := handlers.NewAuthHandler(s.Users, rt.errs, rt.logger)
		r.Post("/register", h.Register)
		r.Get("/profile", h.Profile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/users", h.ListUsers)
		r.Post("/caregiver/assign", h.AssignCaregiver)
		r.Get("/caregiver/patients", h.CaregiverPatients)
	})

	r.Route("/patients", func(r chi.Router) {
		h := handlers.NewPatientHandler(s.Patients, rt.errs, rt.logger)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	r.Route("/caregivers", func(r chi.Router) {
		h := handlers.NewCaregiverHandler(s.Caregivers, rt.errs, rt.logger)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/patients", h.Patients)
		r.Post("/{id}/patients", h.AssignPatient)
	})

	r.Route("/journal", func(r chi.Router) {
		h := handlers.NewJournalHandler(s.Journals, rt.errs, rt.logger)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/caregiver/{patientID}", h.ForPatient)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/pin", h.TogglePin)
	})

	r.Route("/memories", func(r chi.Router) {
		h := handlers.NewMemoryHandler(s.Memories, rt.errs, rt.logger)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/caregiver/{patientID}", h.ForPatient)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/pin", h.TogglePin)
		r.Post("/{id}/visualize", h.Visualize)
	})

	r.Route("/calendar", func(r chi.Router) {
		h := handlers.NewCalendarHandler(s.Calendar, rt.errs, rt.logger)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/overdue", h.Overdue)
		r.Get("/caregiver/{patientID}", h.ForPatient)
		r.Post("/caregiver/{patientID}/notes", h.AddNotes)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/complete", h.ToggleComplete)
	})

	r.Route("/ai", func(r chi.Router) {
		h := handlers.NewChatHandler(s.Chat, rt.errs, rt.logger)
		r.Post("/chat", h.Send)
		r.Get("/chat/history", h.History)
	})

	r.Route("/ribbon", func(r chi.Router) {
		h := handlers.NewRibbonHandler(s.Interviews, rt.errs, rt.logger)
		r.Post("/flows", h.CreateFlow)
		r.Get("/flows", h.Flows)
		r.Post("/interviews", h.CreateInterview)
		r.Get("/interviews", h.Interviews)
		r.Get("/interviews/{id}/status", h.Status)
		r.Post("/interviews/{id}/results", h.Results)
		r.Post("/memory-interview/{patientID}", h.MemoryInterview)
	})

	r.Route("/interview-analysis", func(r chi.Router) {
		h := handlers.NewAnalysisHandler(s.Analysis, rt.opts.MaxUploadBytes, rt.errs, rt.logger)
		r.Post("/analyze-response", h.AnalyzeResponse)
		r.Post("/find-relevant-memories", h.FindRelevantMemories)
		r.Post("/real-time-feedback", h.RealTimeFeedback)
		r.Post("/analyze-voice-response", h.AnalyzeVoice)
		r.Get("/summary/{patientID}", h.Summary)
		r.Get("/patient-context/{patientID}", h.PatientContext)
	})

	r.Route("/media", func(r chi.Router) {
		h := handlers.NewMediaHandler(s.Media, rt.errs, rt.logger)
		r.Post("/upload", h.Upload)
		r.Get("/files", h.List)
		r.Get("/files/{id}", h.Download)
		r.Delete("/files/{id}", h.Delete)
	})
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "MindBloom API",
		"version": Version,
	})
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck pings the backing store when a check is configured.
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := rt.opts.Ready(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			common.RespondError(w, http.StatusServiceUnavailable, common.StandardErrorCodes.ServiceUnavailable, "Storage is not reachable")
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
