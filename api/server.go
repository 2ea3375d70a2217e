// Package api serves statement extraction, categorisation, duplicate review and
// tax estimates over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aqlanhadi/sbtax/categorizer"
	"github.com/aqlanhadi/sbtax/extractor"
	"github.com/aqlanhadi/sbtax/extractor/common"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/sirupsen/logrus"
)

// Config holds the API server configuration
type Config struct {
	Port            string
	DefaultTextOnly bool
	// MaxUploadBytes caps the multipart form kept in memory.
	MaxUploadBytes int64

	// Home office defaults for /tax requests that leave them out.
	OfficeSqm            float64
	HouseSqm             float64
	HomeOfficeCategories []string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:           ":8080",
		MaxUploadBytes: 32 << 20,
	}
}

// RuleSource supplies the user rules applied on top of the static table.
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]categorizer.Rule, error)
}

// StaticRules serves a fixed rule list, typically loaded from a rules file.
type StaticRules []categorizer.Rule

func (r StaticRules) ActiveRules(context.Context) ([]categorizer.Rule, error) {
	return r, nil
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
	log    logrus.FieldLogger
	rules  RuleSource
}

// New creates a new API server. Without rules only the static table is used.
func New(cfg Config, log logrus.FieldLogger, rules RuleSource) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if rules == nil {
		rules = StaticRules(nil)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		log:    log,
		rules:  rules,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/categorize", s.handleCategorize)
	s.mux.HandleFunc("/duplicates", s.handleDuplicates)
	s.mux.HandleFunc("/tax", s.handleTax)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Port,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.config.Port).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("could not write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	StatementOnly   bool
	TransactionOnly bool
	TextOnly        bool
}

func flag(r *http.Request, name string) bool {
	return r.FormValue(name) == "true" || r.URL.Query().Get(name) == "true"
}

// parseExtractOptions extracts options from the HTTP request
func (s *Server) parseExtractOptions(r *http.Request) ExtractOptions {
	return ExtractOptions{
		StatementOnly:   flag(r, "statement_only"),
		TransactionOnly: flag(r, "transaction_only"),
		TextOnly:        s.config.DefaultTextOnly || flag(r, "text_only"),
	}
}

// handleExtract parses an uploaded statement and returns it categorised
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithField(logging.FieldRemote, r.RemoteAddr)

	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		log.WithError(err).Debug("could not parse multipart form")
		s.writeError(w, http.StatusBadRequest, "could not parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not get uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "could not read file: "+err.Error())
		return
	}
	log = log.WithField(logging.FieldFile, header.Filename)

	opts := s.parseExtractOptions(r)
	if opts.TextOnly {
		s.handleTextOnlyExtract(w, data, header.Filename)
		return
	}

	statement, err := extractor.ProcessReader(bytes.NewReader(data), header.Filename)
	if err != nil {
		log.WithError(err).Info("extraction failed")
		status := http.StatusBadRequest
		if extractor.IsParseError(err) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err.Error())
		return
	}

	rules, err := s.rules.ActiveRules(r.Context())
	if err != nil {
		log.WithError(err).Error("could not load rules")
		s.writeError(w, http.StatusInternalServerError, "could not load rules")
		return
	}
	statement = categorizer.Annotate(statement, rules)

	log.WithField(logging.FieldCount, len(statement.Transactions)).Info("extracted statement")
	s.writeJSON(w, http.StatusOK, extractor.CreateFinalOutput(statement, opts.TransactionOnly, opts.StatementOnly))
}

// handleTextOnlyExtract returns the raw page text, for writing new patterns
func (s *Server) handleTextOnlyExtract(w http.ResponseWriter, data []byte, filename string) {
	pages, err := common.ExtractPages(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not extract text from file: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename": filename,
		"pages":    len(pages),
		"text":     strings.Join(pages, "\n"),
	})
}
