package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/service"
)

type RenderHandler struct {
	render *service.RenderService
}

func NewRenderHandler(render *service.RenderService) *RenderHandler {
	return &RenderHandler{render: render}
}

// Thumbnail serves raw PNG bytes for a render reference.
func (h *RenderHandler) Thumbnail(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	data, err := h.render.Render(c.Request.Context(), c.Param("file_id"), page)
	if err != nil {
		if appErr.IsNotFound(err) {
			c.Status(http.StatusNotFound)
			return
		}
		logutil.GetLogger(c.Request.Context()).Error("render page failed",
			zap.String("file_id", c.Param("file_id")),
			zap.Int("page", page),
			zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", data)
}
