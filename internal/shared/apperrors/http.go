package apperrors

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pubrepo-backend/internal/shared/response"
	"pubrepo-backend/pkg/logger"
)

// Abort maps an application error to the response envelope. Handlers call
// this at the request boundary instead of switching on statuses themselves.
func Abort(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		logger.Error("unhandled error", err)
		response.InternalServerError(c, "internal server error")
		return
	}

	switch e.Kind {
	case KindValidation:
		response.BadRequest(c, e.Message)
	case KindConflict:
		response.Conflict(c, e.Message)
	case KindNotFound:
		response.NotFound(c, e.Message)
	case KindAuth:
		response.Unauthorized(c, e.Message)
	case KindForbidden:
		response.Forbidden(c, e.Message)
	case KindUpstream:
		logger.Error(e.Message, e.Err)
		response.InternalServerError(c, e.Message)
	default:
		logger.Error(e.Message, e.Err)
		response.InternalServerError(c, "internal server error")
	}
}
