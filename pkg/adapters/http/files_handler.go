// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/filestore"
	"github.com/leseb/docparse/pkg/pipeline"
)

// readUpload reads the "file" part of a multipart request. It writes the
// error response itself and returns ok=false on failure.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (content []byte, header *multipart.FileHeader, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "Upload exceeds "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
			return nil, nil, false
		}
		h.logger.Error("Failed to parse multipart form", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Failed to parse multipart form")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "File is required")
		return nil, nil, false
	}
	defer file.Close()

	content, err = io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read file content", "error", err)
		h.writeError(w, http.StatusInternalServerError, "read_error", "Failed to read file content")
		return nil, nil, false
	}
	return content, header, true
}

// handleUploadFile handles POST /v1/files
func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	content, header, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	filename := filepath.Base(header.Filename)
	mimeType := header.Header.Get("Content-Type")
	if f, known := extractor.FromPath(filename); known {
		mimeType = f.MimeType()
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file := &filestore.File{
		ID:        pipeline.NewFileID(),
		Filename:  filename,
		MimeType:  mimeType,
		Bytes:     int64(len(content)),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.files.PutFile(r.Context(), file); err != nil {
		h.logger.Error("Failed to store file", "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}

	h.logger.Info("File uploaded", "file_id", file.ID, "filename", file.Filename, "bytes", file.Bytes)
	h.writeJSON(w, http.StatusOK, toFile(file))
}

// handleListFiles handles GET /v1/files
func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	after := query.Get("after")

	limit := filestore.DefaultListLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > filestore.MaxListLimit {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and "+strconv.Itoa(filestore.MaxListLimit))
			return
		}
		limit = l
	}

	files, hasMore, err := h.files.ListFiles(r.Context(), after, limit)
	if err != nil {
		h.logger.Error("Failed to list files", "error", err)
		h.writeError(w, http.StatusInternalServerError, "list_error", err.Error())
		return
	}

	data := make([]File, 0, len(files))
	for _, f := range files {
		data = append(data, toFile(f))
	}
	resp := ListFilesResponse{
		Object:  "list",
		Data:    data,
		HasMore: hasMore,
	}
	if len(data) > 0 {
		resp.FirstID = data[0].ID
		resp.LastID = data[len(data)-1].ID
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleGetFile handles GET /v1/files/{id}
func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")

	file, err := h.files.GetFile(r.Context(), fileID)
	if err != nil {
		h.writeStoreError(w, err, fileID)
		return
	}
	h.writeJSON(w, http.StatusOK, toFile(file))
}

// handleGetFileContent handles GET /v1/files/{id}/content
func (h *Handler) handleGetFileContent(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")

	file, err := h.files.GetFile(r.Context(), fileID)
	if err != nil {
		h.writeStoreError(w, err, fileID)
		return
	}
	content, err := h.files.GetFileContent(r.Context(), fileID)
	if err != nil {
		h.writeStoreError(w, err, fileID)
		return
	}

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+file.Filename+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// handleDeleteFile handles DELETE /v1/files/{id}
func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")

	if err := h.files.DeleteFile(r.Context(), fileID); err != nil {
		h.writeStoreError(w, err, fileID)
		return
	}

	h.logger.Info("File deleted", "file_id", fileID)
	h.writeJSON(w, http.StatusOK, DeleteFileResponse{
		ID:      fileID,
		Object:  "file.deleted",
		Deleted: true,
	})
}

// writeStoreError maps file store errors to 404 or 500.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, fileID string) {
	if errors.Is(err, filestore.ErrFileNotFound) {
		h.writeError(w, http.StatusNotFound, "file_not_found", "File "+fileID+" not found")
		return
	}
	h.logger.Error("File store error", "error", err, "file_id", fileID)
	h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
}
