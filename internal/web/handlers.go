package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/dataio/internal/core"
	"github.com/JonMunkholm/dataio/internal/formats"
)

// maxMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const maxMemory = 32 << 20

var contentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv; charset=utf-8",
}

type formatsResponse struct {
	Export []string `json:"export"`
	Import []string `json:"import"`
}

type fieldResponse struct {
	Name     string `json:"name"`
	Order    int    `json:"order"`
	ReadOnly bool   `json:"read_only,omitempty"`
}

type importResponse struct {
	RecordType string `json:"record_type"`
	Created    int    `json:"created"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formatsResponse{
		Export: s.registry.ExporterNames(),
		Import: s.registry.ImporterNames(),
	})
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	m := s.models(chi.URLParam(r, "recordType"))

	fields, err := m.Fields(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]fieldResponse, len(fields))
	for i, f := range fields {
		resp[i] = fieldResponse{Name: f.Name, Order: f.Order, ReadOnly: f.ReadOnly}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExport runs an export and sends the new file as an attachment.
// The file stays in the export directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	m := s.models(chi.URLParam(r, "recordType"))

	format := r.URL.Query().Get("format")
	if format == "" {
		format = formats.Excel
	}

	path, err := m.ExportData(r.Context(), format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		respondError(w, r, err)
		return
	}

	name := filepath.Base(path)
	if ct, ok := contentTypes[filepath.Ext(name)]; ok {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s"`, m.Name, name))
	http.ServeContent(w, r, name, st.ModTime(), f)
}

// handleImport stores the uploaded file in the import directory and imports
// it. The format comes from ?format= or the uploaded file name.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	m := s.models(chi.URLParam(r, "recordType"))

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = formats.ForPath(header.Filename)
	}
	if err := m.CheckImportFormat(format); err != nil {
		respondError(w, r, err)
		return
	}

	path, err := saveUpload(m.Layout, header, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	n, err := m.ImportData(r.Context(), path, format)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{RecordType: m.Name, Created: n})
}

// saveUpload copies an upload into the layout's import directory under a
// fresh name that keeps the original extension.
func saveUpload(layout core.Layout, header *multipart.FileHeader, src io.Reader) (string, error) {
	dir := layout.ImportDir()
	if err := core.EnsureDirs(layout.Root(), dir); err != nil {
		return "", err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext == "" {
		ext = "upload"
	}

	dst, err := core.ReserveExportFile(dir, ext, time.Now(), nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("save upload %s: %w", header.Filename, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("save upload %s: %w", header.Filename, err)
	}
	return dst.Name(), nil
}
