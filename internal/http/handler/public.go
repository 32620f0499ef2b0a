package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"checkclient/internal/share"
)

// Uploads are parsed with this much memory before spilling to temp files, and
// the whole request body is capped well above the per-file limit.
const (
	multipartMemory = 8 << 20
	maxRequestBody  = 64 << 20
)

type PublicHandler struct {
	Gateway *share.Gateway
	Log     *zap.Logger
}

func (h *PublicHandler) Get(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	c, err := h.Gateway.GetByToken(r.Context(), token)
	if errors.Is(err, share.ErrNotFound) {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Submit accepts the multipart share-page form: a textResponses JSON field
// plus one file_<fieldLabel> part per upload.
func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	text := map[string]string{}
	if raw := r.FormValue("textResponses"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &text); err != nil {
			writeError(w, http.StatusBadRequest, "textResponses must be a JSON object")
			return
		}
	}

	files := map[string]share.UploadedFile{}
	if r.MultipartForm != nil {
		for name, headers := range r.MultipartForm.File {
			if !strings.HasPrefix(name, "file_") || len(headers) == 0 {
				continue
			}
			fh := headers[0]
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable upload: "+fh.Filename)
				return
			}
			defer f.Close()

			files[strings.TrimPrefix(name, "file_")] = share.UploadedFile{
				Filename: fh.Filename,
				Mimetype: fh.Header.Get("Content-Type"),
				Size:     fh.Size,
				Content:  f,
			}
		}
	}

	err := h.Gateway.SubmitResponse(r.Context(), token, text, files)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case errors.Is(err, share.ErrNotFound):
		writeError(w, http.StatusNotFound, "checklist not found")
	case errors.Is(err, share.ErrChecklistClosed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, share.ErrEmptyFile),
		errors.Is(err, share.ErrFileTooLarge),
		errors.Is(err, share.ErrMissingRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("public submit failed", zap.String("token", token), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not process submission")
	}
}
