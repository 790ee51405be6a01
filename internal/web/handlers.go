package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/InvoiceFlow/internal/ingest"
	"github.com/JonMunkholm/InvoiceFlow/internal/logging"
	"github.com/google/uuid"
)

// allowedExtensions are the invoice image types accepted for upload.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleExtractFile accepts an invoice image upload and returns the
// extracted, normalized record without persisting it.
func (s *Server) handleExtractFile(w http.ResponseWriter, r *http.Request) {
	filename, savedPath, ok := s.saveUpload(w, r)
	if !ok {
		return
	}

	rec, ok := s.extractUpload(w, r, savedPath)
	if !ok {
		return
	}
	ingest.Normalize(r.Context(), rec)

	writeJSON(w, map[string]any{
		"filename":  filename,
		"extracted": rec,
	})
}

// handleExtractAndSaveFile extracts an uploaded invoice image and
// appends the resulting order to the store in one call.
func (s *Server) handleExtractAndSaveFile(w http.ResponseWriter, r *http.Request) {
	filename, savedPath, ok := s.saveUpload(w, r)
	if !ok {
		return
	}

	rec, ok := s.extractUpload(w, r, savedPath)
	if !ok {
		return
	}

	orderID, err := s.service.Ingest(r.Context(), rec)
	if err != nil {
		writeError(w, r, ingestStatus(err), err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("invoice ingested",
		"filename", filename, "sales_order_id", orderID)

	writeJSON(w, map[string]any{
		"message":      "Extracted (file) and saved",
		"filename":     filename,
		"salesOrderId": orderID,
		"extracted":    rec,
	})
}

// handleIngestOrder ingests an already-extracted record posted as JSON.
func (s *Server) handleIngestOrder(w http.ResponseWriter, r *http.Request) {
	var rec ingest.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid record: "+err.Error())
		return
	}

	orderID, err := s.service.Ingest(r.Context(), &rec)
	if err != nil {
		writeError(w, r, ingestStatus(err), err.Error())
		return
	}

	writeJSON(w, map[string]any{"orderId": orderID})
}

// extractUpload runs image extraction under the concurrency limiter.
// Returns false when a response has already been written.
func (s *Server) extractUpload(w http.ResponseWriter, r *http.Request, savedPath string) (*ingest.Record, bool) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		if errors.Is(err, ErrExtractBusy) {
			writeError(w, r, http.StatusTooManyRequests, err.Error())
		} else {
			writeError(w, r, http.StatusServiceUnavailable, err.Error())
		}
		return nil, false
	}
	defer s.limiter.Release()

	rec, err := s.extractor.ExtractImage(r.Context(), savedPath)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rec, true
}

// ingestStatus maps ingestion failures to response codes. A schema or
// corrupt-identifier problem means the destination cannot accept the
// record; everything else surfaces as a store failure.
func ingestStatus(err error) int {
	var schemaErr *ingest.SchemaError
	var corruptErr *ingest.CorruptIDError
	if errors.As(err, &schemaErr) || errors.As(err, &corruptErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// saveUpload validates the multipart upload and saves it under the
// upload directory with a uuid prefix to avoid collisions. Returns the
// original filename, the saved path, and false when a response has
// already been written.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file field")
		return "", "", false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if filename == "" {
		writeError(w, r, http.StatusBadRequest, "empty file")
		return "", "", false
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s, use png/jpg/jpeg", ext))
		return "", "", false
	}

	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to prepare upload dir")
		return "", "", false
	}

	savedPath := filepath.Join(s.cfg.Upload.Dir, uuid.NewString()+"_"+filename)
	dst, err := os.Create(savedPath)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to save upload")
		return "", "", false
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(savedPath)
		writeError(w, r, http.StatusInternalServerError, "failed to save upload")
		return "", "", false
	}

	return filename, savedPath, true
}

// sanitizeFilename strips any path components from a client-supplied
// filename.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
