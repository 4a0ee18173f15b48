// Package httpapi exposes the stamping service over HTTP for the field editor UI.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/a3tai/pdf-field-stamper/internal/audit"
	"github.com/a3tai/pdf-field-stamper/internal/config"
	"github.com/a3tai/pdf-field-stamper/internal/pdf"
)

// Service is the part of pdf.Service the HTTP surface depends on
type Service interface {
	GenerateSignedPDF(ctx context.Context, req pdf.GenerateSignedPDFRequest) (*pdf.GenerateSignedPDFResult, error)
	DocumentInfo(req pdf.DocumentInfoRequest) (*pdf.DocumentInfoResult, error)
	VerifyOutput(req pdf.VerifyOutputRequest) (*pdf.VerifyOutputResult, error)
	OutputDirectory() string
}

// Server serves the REST API and the generated documents
type Server struct {
	config  *config.Config
	service Service
	router  chi.Router
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, service Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	s := &Server{
		config:  cfg,
		service: service,
	}
	s.router = s.routes()

	return s, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/generate-signed-pdf", s.handleGenerateSignedPDF)
	r.Get("/document-info", s.handleDocumentInfo)
	r.Get("/audit/{id}", s.handleAudit)

	outputFiles := http.StripPrefix(pdf.OutputRoute, http.FileServer(http.Dir(s.service.OutputDirectory())))
	r.Get(pdf.OutputRoute+"/*", func(w http.ResponseWriter, r *http.Request) {
		// audit records live next to the documents and are served through /audit only
		if !isDocumentPath(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		outputFiles.ServeHTTP(w, r)
	})

	return r
}

func (s *Server) handleGenerateSignedPDF(w http.ResponseWriter, r *http.Request) {
	var req pdf.GenerateSignedPDFRequest
	if err := ReadJSON(w, r, s.config.MaxBodySize, &req); err != nil {
		s.internalError(w, r, fmt.Errorf("decode request: %w", err))
		return
	}

	result, err := s.service.GenerateSignedPDF(r.Context(), req)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleDocumentInfo(w http.ResponseWriter, r *http.Request) {
	pdfURL := r.URL.Query().Get("pdfUrl")
	if pdfURL == "" {
		WriteError(w, http.StatusBadRequest, "pdfUrl is required")
		return
	}

	result, err := s.service.DocumentInfo(pdf.DocumentInfoRequest{PDFURL: pdfURL})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.service.VerifyOutput(pdf.VerifyOutputRequest{ID: id})
	switch {
	case errors.Is(err, audit.ErrRecordNotFound), errors.Is(err, audit.ErrInvalidID):
		WriteError(w, http.StatusNotFound, "Audit record not found")
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// internalError logs the cause and answers with the generic failure body
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[%s] %s %s failed: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", s.config.Address())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
