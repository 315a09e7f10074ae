package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/examforge/internal/filestore"
	"github.com/xxxsen/examforge/internal/upload"
)

type FileHandler struct {
	outputs filestore.Store
	uploads *upload.Store
}

func NewFileHandler(outputs filestore.Store, uploads *upload.Store) *FileHandler {
	return &FileHandler{outputs: outputs, uploads: uploads}
}

// Generated streams an assembled document from the local output store.
func (h *FileHandler) Generated(c *gin.Context) {
	if h.outputs.Type() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if !validKey(key) {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.outputs.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	c.Header("Content-Type", contentTypeOf(key))
	c.Header("Content-Disposition", `attachment; filename="`+key+`"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

// Upload serves an uploaded source file by its stored key.
func (h *FileHandler) Upload(c *gin.Context) {
	key := c.Param("key")
	if !validKey(key) {
		c.Status(http.StatusBadRequest)
		return
	}
	path, err := h.uploads.Path(key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Content-Type", contentTypeOf(key))
	c.File(path)
}

func contentTypeOf(key string) string {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.Contains(key, "/") && !strings.Contains(key, "\\")
}
