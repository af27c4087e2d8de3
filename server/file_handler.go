package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"beatsensei/logger"
	"beatsensei/storage"
)

// FileHandler streams sample audio objects out of the object store.
// Only recognized audio extensions are served.
func (h *APIHandler) FileHandler(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/files/")
	if objectPath == "" || strings.Contains(objectPath, "..") {
		respondError(w, http.StatusBadRequest, "invalid object path", "")
		return
	}
	if !storage.IsAllowedAudioObject(objectPath) {
		respondError(w, http.StatusNotFound, "file not found", "")
		return
	}

	object, size, err := storage.OpenSample(r.Context(), objectPath)
	if err != nil {
		logger.Warn("file fetch failed", logger.String("object", objectPath), logger.ErrorField(err))
		respondError(w, http.StatusNotFound, "file not found", "")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", storage.ContentTypeForObject(objectPath))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("file stream interrupted", logger.String("object", objectPath), logger.ErrorField(err))
	}
}
