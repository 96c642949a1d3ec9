package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/eknkc/pug"
	"github.com/eknkc/pug/compiler"

	"media-gallery/pkg/services"
)

const maxMultipartMemory = 32 << 20

// Handlers serves the gallery page and the JSON API
type Handlers struct {
	svc           *services.Service
	adminPassword string
	viewsDir      string
	maxUpload     int64
}

// NewHandlers creates the HTTP handlers for svc
func NewHandlers(svc *services.Service) *Handlers {
	cfg := svc.Config()
	h := &Handlers{
		svc:           svc,
		adminPassword: cfg.AdminPassword,
		viewsDir:      cfg.ViewsDir,
	}
	if limit := cfg.MaxImageBytes(); limit > 0 {
		h.maxUpload = limit + maxMultipartMemory
	}
	return h
}

// IndexHandler renders the gallery page
func (h *Handlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	slog.DebugContext(r.Context(), "Generating Index")

	dir, err := filepath.Abs(h.viewsDir)
	if err != nil {
		slog.ErrorContext(r.Context(), "Invalid views directory", "dir", h.viewsDir, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	template, err := pug.CompileFile("index.pug", pug.Options{Dir: compiler.FsDir(dir)})
	if err != nil {
		slog.ErrorContext(r.Context(), "Template error", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	index, err := h.svc.Index(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read catalog", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := template.Execute(w, index); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err)
	}
}

// HealthHandler reports liveness
func (h *Handlers) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// LoginHandler checks the admin password
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if h.adminPassword == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		slog.WarnContext(r.Context(), "Rejected login", "client", clientIP(r))
		writeFailure(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	writeJSON(w, apiResponse{Success: true}, http.StatusOK)
}

// UploadHandler stores an uploaded image or ingests a link. Exactly one of
// the two must be supplied.
func (h *Handlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		h.uploadJSON(w, r)
		return
	}
	h.uploadForm(w, r)
}

func (h *Handlers) uploadJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Link     string `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Link) == "" {
		writeFailure(w, "Missing image or link", http.StatusBadRequest)
		return
	}

	h.ingestLink(w, r, req.Category, req.Link)
}

func (h *Handlers) uploadForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeFailure(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	category := r.FormValue("category")
	link := strings.TrimSpace(r.FormValue("link"))

	file, header, err := r.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		writeFailure(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	hasImage := err == nil
	if hasImage {
		defer file.Close()
	}

	switch {
	case hasImage && link != "":
		writeFailure(w, "Provide either an image or a link, not both", http.StatusBadRequest)
	case hasImage:
		path, err := h.svc.UploadFile(r.Context(), category, header.Filename, file)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, apiResponse{Success: true, FilePath: path}, http.StatusOK)
	case link != "":
		h.ingestLink(w, r, category, link)
	default:
		writeFailure(w, "Missing image or link", http.StatusBadRequest)
	}
}

func (h *Handlers) ingestLink(w http.ResponseWriter, r *http.Request, category, link string) {
	path, err := h.svc.IngestLink(r.Context(), category, link)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, apiResponse{Success: true, FilePath: path}, http.StatusOK)
}

// CategoriesHandler lists the category names. It never fails.
func (h *Handlers) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Catalog.ListCategories(r.Context()), http.StatusOK)
}

// ImagesHandler lists the entries of ?category=. It never fails.
func (h *Handlers) ImagesHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	writeJSON(w, h.svc.Catalog.ListEntries(r.Context(), category), http.StatusOK)
}

// DeleteImageHandler removes one entry and its blob
func (h *Handlers) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category  string `json:"category"`
		ImagePath string `json:"imagePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteImage(r.Context(), req.Category, req.ImagePath); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, apiResponse{Success: true}, http.StatusOK)
}

// DeleteCategoryHandler removes a category with all of its entries and blobs
func (h *Handlers) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), req.Category); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, apiResponse{Success: true}, http.StatusOK)
}

// GetConfigHandler returns the display settings
func (h *Handlers) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Settings.Get(r.Context()), http.StatusOK)
}

// SetConfigHandler updates the display mode
func (h *Handlers) SetConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayMode *int `json:"displayMode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayMode == nil {
		writeFailure(w, "Missing displayMode", http.StatusBadRequest)
		return
	}

	if err := h.svc.Settings.Set(r.Context(), *req.DisplayMode); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, apiResponse{Success: true}, http.StatusOK)
}

// notAllowed answers requests on API paths with the wrong method
func notAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, fmt.Sprintf("Method %s not allowed", r.Method), http.StatusMethodNotAllowed)
}
