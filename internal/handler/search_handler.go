package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/examforge/internal/model"
	"github.com/xxxsen/examforge/internal/pkg/errcode"
	"github.com/xxxsen/examforge/internal/pkg/response"
	"github.com/xxxsen/examforge/internal/service"
)

type SearchHandler struct {
	search  *service.SearchService
	instant *service.InstantService
}

func NewSearchHandler(search *service.SearchService, instant *service.InstantService) *SearchHandler {
	return &SearchHandler{search: search, instant: instant}
}

type searchRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type searchResponse struct {
	Results []model.SearchResult `json:"results"`
	Error   string               `json:"error,omitempty"`
}

// Search never fails at the protocol level: lookup and parse failures come
// back as an empty result list with an error message.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.SessionID == model.FailedSessionID {
		response.Success(c, searchResponse{Results: []model.SearchResult{}, Error: "session was not created successfully"})
		return
	}
	results, _, err := h.search.Query(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		response.Success(c, searchResponse{Results: []model.SearchResult{}, Error: softError(err)})
		return
	}
	response.Success(c, searchResponse{Results: results})
}

func (h *SearchHandler) GenerateInstant(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	out, err := h.instant.Generate(c.Request.Context(), req.SessionID, req.Query, requestBaseURL(c))
	if err != nil {
		var perr *service.ParseError
		if errors.As(err, &perr) {
			response.Error(c, errcode.ErrAIUnavailable, softError(err))
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"status":           "success",
		"output_reference": out.OutputReference,
		"download_url":     out.DownloadURL,
		"page_count":       out.PageCount,
		"results":          out.Results,
		"selections":       out.Selections,
	})
}

func softError(err error) string {
	var perr *service.ParseError
	if errors.As(err, &perr) {
		return "failed to parse ai response"
	}
	return "session not found"
}
