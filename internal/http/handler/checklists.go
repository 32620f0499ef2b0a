package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"checkclient/internal/checklist"
	"checkclient/internal/export"
	"checkclient/internal/upload"
)

type ChecklistHandler struct {
	Svc      *checklist.Service
	Exporter export.Exporter
	Events   checklist.EventSink
	Files    upload.Store
	Log      *zap.Logger
}

// coerceID accepts both "1" and 1; older dashboard builds sent the numeric
// form from localStorage.
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", id), ".0")
	default:
		return ""
	}
}

type createChecklistReq struct {
	UserID      any               `json:"userId"`
	ClientName  string            `json:"clientName"`
	ClientEmail string            `json:"clientEmail"`
	ServiceType string            `json:"serviceType"`
	Fields      []checklist.Field `json:"fields"`
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createChecklistReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	created, err := h.Svc.Create(r.Context(), checklist.CreateInput{
		UserID:      coerceID(req.UserID),
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ServiceType: req.ServiceType,
		Fields:      req.Fields,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	status := checklist.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	items, err := h.Svc.List(r.Context(), userID, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "checklist id and userId are required")
		return
	}

	c, err := h.Svc.Get(r.Context(), id, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type updateStatusReq struct {
	UserID any    `json:"userId"`
	Status string `json:"status"`
}

func (h *ChecklistHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	userID := coerceID(req.UserID)
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("userId"))
	}
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "checklist id and userId are required")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	updated, err := h.Svc.UpdateStatus(r.Context(), id, userID, checklist.Status(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type deleteReq struct {
	UserID any `json:"userId"`
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" && r.Body != nil {
		var req deleteReq
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err == nil {
			userID = coerceID(req.UserID)
		}
	}
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "checklist id and userId are required")
		return
	}

	if err := h.Svc.Delete(r.Context(), id, userID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DownloadFile streams one submitted file back to the checklist owner.
func (h *ChecklistHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fieldName := chi.URLParam(r, "fieldName")
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if id == "" || fieldName == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "checklist id, field name and userId are required")
		return
	}

	c, err := h.Svc.Get(r.Context(), id, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if c.Responses == nil {
		writeError(w, http.StatusNotFound, "no responses submitted yet")
		return
	}
	meta, ok := c.Responses.Files[fieldName]
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	f, err := h.Files.Open(r.Context(), meta.Path)
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		h.Log.Error("open upload failed", zap.String("checklistId", id), zap.String("path", meta.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read file")
		return
	}
	defer f.Close()

	contentType := meta.Mimetype
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	if _, err := io.Copy(w, f); err != nil {
		h.Log.Error("stream upload failed", zap.String("checklistId", id), zap.Error(err))
	}
}

func (h *ChecklistHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	items, err := h.Svc.List(r.Context(), userID, "")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="checklists.csv"`)
	if err := h.Exporter.Export(r.Context(), w, items); err != nil {
		h.Log.Error("csv export failed", zap.String("userId", userID), zap.Error(err))
		return
	}
	h.Events.Track("export_csv", userID, map[string]any{"count": len(items)})
}
