package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/examforge/internal/middleware"
	"github.com/xxxsen/examforge/internal/pkg/errcode"
	appErr "github.com/xxxsen/examforge/internal/pkg/errors"
	"github.com/xxxsen/examforge/internal/pkg/response"
	"github.com/xxxsen/examforge/internal/service"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	var extErr *service.ExtractionError
	switch {
	case errors.As(err, &extErr):
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrExtractionFailed, extErr.Error())
	case errors.Is(err, appErr.ErrSourceNotFound):
		response.ErrorStatus(c, http.StatusNotFound, errcode.ErrSourceNotFound, err.Error())
	case errors.Is(err, appErr.ErrInvalidPage):
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalidPage, err.Error())
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

func requestBaseURL(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		if c.Request.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}
