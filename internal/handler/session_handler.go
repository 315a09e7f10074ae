package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/pkg/errcode"
	"github.com/xxxsen/examforge/internal/pkg/response"
	"github.com/xxxsen/examforge/internal/service"
	"github.com/xxxsen/examforge/internal/session"
)

type SessionHandler struct {
	uploads     *service.UploadService
	sessions    *session.Registry
	maxFiles    int
	maxFileSize int64
}

func NewSessionHandler(uploads *service.UploadService, sessions *session.Registry, maxFiles int, maxFileSize int64) *SessionHandler {
	return &SessionHandler{uploads: uploads, sessions: sessions, maxFiles: maxFiles, maxFileSize: maxFileSize}
}

type sessionFile struct {
	FileID       string         `json:"file_id"`
	Filename     string         `json:"filename"`
	OriginalName string         `json:"original_name"`
	PageCount    int            `json:"page_count"`
	Pages        map[int]string `json:"pages"`
}

type sessionResponse struct {
	Status    string        `json:"status,omitempty"`
	SessionID string        `json:"session_id"`
	Files     []sessionFile `json:"files"`
	CreatedAt int64         `json:"created_at,omitempty"`
}

func toSessionFiles(files []*model.FileRecord) []sessionFile {
	out := make([]sessionFile, 0, len(files))
	for _, f := range files {
		out = append(out, sessionFile{
			FileID:       f.FileID,
			Filename:     f.StorageKey,
			OriginalName: f.OriginalName,
			PageCount:    f.PageCount(),
			Pages:        f.PageMap(),
		})
	}
	return out
}

func (h *SessionHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, "files are required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, "files are required")
		return
	}
	if h.maxFiles > 0 && len(headers) > h.maxFiles {
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, "too many files")
		return
	}
	files := make([]service.IncomingFile, 0, len(headers))
	for _, fh := range headers {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalidFile, fh.Filename+" exceeds "+formatUploadLimit(h.maxFileSize))
			return
		}
		header := fh
		files = append(files, service.IncomingFile{
			Name: header.Filename,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}
	out, err := h.uploads.CreateSession(c.Request.Context(), files)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, sessionResponse{
		Status:    "success",
		SessionID: out.SessionID,
		Files:     toSessionFiles(out.Files),
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.sessions.Lookup(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, sessionResponse{
		SessionID: sess.SessionID,
		Files:     toSessionFiles(sess.Files),
		CreatedAt: sess.CreatedAt.Unix(),
	})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		response.Error(c, errcode.ErrNotFound, "not found")
		return
	}
	response.Success(c, gin.H{"ok": true})
}
