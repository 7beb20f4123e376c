package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
)

// FilesHandler serves stored media artifacts. This is the local-disk
// analogue of an S3 public bucket; GetURL on the object store points here.
type FilesHandler struct {
	objects interfaces.ObjectStorage
	logger  arbor.ILogger
}

func NewFilesHandler(objects interfaces.ObjectStorage, logger arbor.ILogger) *FilesHandler {
	return &FilesHandler{
		objects: objects,
		logger:  logger,
	}
}

// ServeHandler handles GET /files/{key}
func (h *FilesHandler) ServeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/files/")
	if key == "" || strings.Contains(key, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid file key")
		return
	}

	obj, err := h.objects.Open(r.Context(), key)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	defer obj.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("File stream interrupted")
	}
}
