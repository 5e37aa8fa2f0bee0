package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"greenlens/internal/archive"
	"greenlens/internal/service"
)

// HandleAnalyzeProject is POST /api/analyze-project. The upload is a
// multipart form with the ZIP under the "archive" field; a raw
// application/zip body is accepted as well.
func (h *Handler) HandleAnalyzeProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := readArchive(w, r)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "archive exceeds size limit")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "archive field is required")
		return
	}

	res, err := h.svc.AnalyzeProject(r.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArchiveTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "archive exceeds size limit")
		case errors.Is(err, service.ErrBadArchive):
			writeError(w, http.StatusBadRequest, "archive is not a readable ZIP")
		default:
			log.Printf("handler: project analysis failed: %v", err)
			writeError(w, http.StatusInternalServerError, "project analysis failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func readArchive(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, archive.MaxArchiveBytes)
	if err := r.ParseMultipartForm(archive.MaxArchiveBytes); err == nil {
		file, _, ferr := r.FormFile("archive")
		if ferr != nil {
			return nil, nil
		}
		defer file.Close()
		return io.ReadAll(file)
	} else if errors.As(err, new(*http.MaxBytesError)) {
		return nil, err
	}
	// Not multipart: treat the body as the archive itself.
	return io.ReadAll(r.Body)
}
