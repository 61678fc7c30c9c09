package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"mindbloom-backend/application/services"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MediaHandler serves file uploads and downloads.
type MediaHandler struct {
	base
	media *services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media *services.MediaService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{base: newBase(errs, logger), media: media}
}

// Upload handles POST /media/upload with the multipart field "file".
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxBytes()+maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		h.fail(w, r, uploadError(err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, pkgerrors.NewValidationError("file is required"))
		return
	}
	defer file.Close()

	stored, err := h.media.Upload(r.Context(), actor, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("File uploaded",
		zap.String("userID", actor.UserID),
		zap.String("fileID", stored.ID),
		zap.Int64("size", stored.Size))
	h.created(w, stored)
}

// List handles GET /media/files
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	files, err := h.media.List(r.Context(), actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, files)
}

// Download handles GET /media/files/{id} and streams the file contents.
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	file, rc, err := h.media.Open(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.OriginalName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Failed to stream file", zap.String("fileID", file.ID), zap.Error(err))
	}
}

// Delete handles DELETE /media/files/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.media.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w, id)
}
