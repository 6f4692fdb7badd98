// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/pipeline"
	"github.com/leseb/docparse/pkg/storage"
)

const maxExtractionsLimit = 1000

// runnerFor returns a copy of the runner with the request's "format"
// query parameter applied.
func (h *Handler) runnerFor(w http.ResponseWriter, r *http.Request) (*pipeline.Runner, bool) {
	runner := h.runner
	if name := r.URL.Query().Get("format"); name != "" {
		f, ok := extractor.FromName(name)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Unknown format "+strconv.Quote(name))
			return nil, false
		}
		runner.FormatOverride = f
	}
	return &runner, true
}

// outcomeStatus maps an extraction outcome to an HTTP status.
func outcomeStatus(o *pipeline.Outcome) int {
	var pe *extractor.ParseError
	switch {
	case o.Err == nil:
		return http.StatusOK
	case errors.Is(o.Err, filestore.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(o.Err, extractor.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(o.Err, &pe):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeOutcome(w http.ResponseWriter, o *pipeline.Outcome) {
	status := outcomeStatus(o)
	if status == http.StatusNotFound {
		h.writeError(w, status, "file_not_found", o.Err.Error())
		return
	}
	h.writeJSON(w, status, fromOutcome(o))
}

// handleExtract handles POST /v1/extract. The uploaded document is
// extracted without being stored.
func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runnerFor(w, r)
	if !ok {
		return
	}
	content, header, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	in := pipeline.Input{Upload: &pipeline.Upload{Name: filepath.Base(header.Filename), Content: content}}
	outcomes := runner.Run(r.Context(), []pipeline.Input{in})
	h.writeOutcome(w, &outcomes[0])
}

// handleExtractFile handles POST /v1/files/{id}/extract
func (h *Handler) handleExtractFile(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runnerFor(w, r)
	if !ok {
		return
	}

	in := pipeline.Input{FileID: r.PathValue("id")}
	outcomes := runner.Run(r.Context(), []pipeline.Input{in})
	h.writeOutcome(w, &outcomes[0])
}

// handleListExtractions handles GET /v1/extractions
func (h *Handler) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		h.writeError(w, http.StatusNotImplemented, "not_configured", "No result store configured")
		return
	}

	limit := storage.DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > maxExtractionsLimit {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and "+strconv.Itoa(maxExtractionsLimit))
			return
		}
		limit = l
	}

	records, err := h.results.ListExtractions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list extractions", "error", err)
		h.writeError(w, http.StatusInternalServerError, "list_error", err.Error())
		return
	}

	data := make([]Extraction, 0, len(records))
	for _, rec := range records {
		data = append(data, fromRecord(rec))
	}
	h.writeJSON(w, http.StatusOK, ListExtractionsResponse{Object: "list", Data: data})
}

// handleGetExtraction handles GET /v1/extractions/{id}
func (h *Handler) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		h.writeError(w, http.StatusNotImplemented, "not_configured", "No result store configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid extraction ID")
		return
	}

	rec, err := h.results.GetExtraction(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "extraction_not_found", "Extraction "+id.String()+" not found")
			return
		}
		h.logger.Error("Failed to get extraction", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, fromRecord(rec))
}
