// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package http serves document upload and extraction over HTTP.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/observability/logging"
	"github.com/leseb/docparse/pkg/pipeline"
	"github.com/leseb/docparse/pkg/storage"
)

// DefaultMaxUploadBytes caps request bodies when Options.MaxUploadBytes is
// not set.
const DefaultMaxUploadBytes = 64 << 20

// Options configures the HTTP adapter.
type Options struct {
	// Files holds uploaded documents.
	Files filestore.FileStore
	// Results is optional; without it extractions are not persisted and
	// the /v1/extractions routes answer 501.
	Results storage.ResultStore
	// Runner carries the extraction settings. Its Store and Results are
	// replaced with the ones above.
	Runner         pipeline.Runner
	MaxUploadBytes int64
}

// Handler implements the HTTP adapter
type Handler struct {
	logger         *logging.Logger
	mux            *http.ServeMux
	files          filestore.FileStore
	results        storage.ResultStore
	runner         pipeline.Runner
	maxUploadBytes int64
}

// New creates a new HTTP handler
func New(logger *logging.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	h := &Handler{
		logger:         logger,
		mux:            http.NewServeMux(),
		files:          opts.Files,
		results:        opts.Results,
		runner:         opts.Runner,
		maxUploadBytes: opts.MaxUploadBytes,
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = DefaultMaxUploadBytes
	}
	h.runner.Store = opts.Files
	h.runner.Results = opts.Results
	if h.runner.Logger == nil {
		h.runner.Logger = logger.Logger
	}

	// Register routes
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /v1/formats", h.handleListFormats)

	// Files API
	h.mux.HandleFunc("POST /v1/files", h.handleUploadFile)
	h.mux.HandleFunc("GET /v1/files", h.handleListFiles)
	h.mux.HandleFunc("GET /v1/files/{id}", h.handleGetFile)
	h.mux.HandleFunc("GET /v1/files/{id}/content", h.handleGetFileContent)
	h.mux.HandleFunc("DELETE /v1/files/{id}", h.handleDeleteFile)

	// Extraction API
	h.mux.HandleFunc("POST /v1/extract", h.handleExtract)
	h.mux.HandleFunc("POST /v1/files/{id}/extract", h.handleExtractFile)
	h.mux.HandleFunc("GET /v1/extractions", h.handleListExtractions)
	h.mux.HandleFunc("GET /v1/extractions/{id}", h.handleGetExtraction)

	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	h.mux.ServeHTTP(w, r)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleListFormats handles GET /v1/formats
func (h *Handler) handleListFormats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data":   formatInfos(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, message string) {
	h.writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	})
}
