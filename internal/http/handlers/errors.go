package handlers

import (
	"errors"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err as {statusCode, message}. Errors without a client-safe
// message are logged and reported as 500 "Something went wrong".
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		middleware.AbortWithError(c, appErr)
		return
	}

	_ = c.Error(err)
	log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	middleware.AbortWithError(c, domain.ErrInternal)
}

// respondErrorAs is respondError with the status of kind overridden for this endpoint
func respondErrorAs(c *gin.Context, log *zap.Logger, err error, kind *domain.AppError, status int) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && errors.Is(appErr, kind) {
		err = appErr.WithStatus(status)
	}
	respondError(c, log, err)
}

func badRequest(c *gin.Context, msg string) {
	middleware.AbortWithError(c, domain.NewBadRequest(msg))
}
