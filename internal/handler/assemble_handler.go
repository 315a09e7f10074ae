package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/pkg/errcode"
	"github.com/xxxsen/examforge/internal/pkg/response"
	"github.com/xxxsen/examforge/internal/service"
)

type AssembleHandler struct {
	assemble *service.AssembleService
}

func NewAssembleHandler(assemble *service.AssembleService) *AssembleHandler {
	return &AssembleHandler{assemble: assemble}
}

type assembleRequest struct {
	Selections []model.PageSelection `json:"selections"`
}

func (h *AssembleHandler) GeneratePDF(c *gin.Context) {
	var req assembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	out, err := h.assemble.Assemble(c.Request.Context(), req.Selections, requestBaseURL(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"status":           "success",
		"output_reference": out.OutputReference,
		"download_url":     out.DownloadURL,
		"page_count":       out.PageCount,
	})
}
