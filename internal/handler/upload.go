package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/rahmatdika/ekantin/internal/upload"
)

// UploadHandler accepts payment proof images.
type UploadHandler struct {
	uploader upload.Uploader
	logger   *slog.Logger
}

func NewUploadHandler(u upload.Uploader, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploader: u, logger: logger}
}

// Upload takes a multipart "file" field, validates it, and stores it. The
// Drive access token may ride along as a cookie, Authorization header, or
// accessToken form field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.MaxSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := upload.Validate(header.Filename, contentType, header.Size); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxSize))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	res, err := h.uploader.Upload(r.Context(), upload.TokenFromRequest(r), header.Filename, contentType, data)
	if errors.Is(err, upload.ErrMissingToken) {
		writeError(w, http.StatusUnauthorized, "access token required")
		return
	}
	if err != nil {
		h.logger.Error("upload proof", "error", err)
		writeError(w, http.StatusBadGateway, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
