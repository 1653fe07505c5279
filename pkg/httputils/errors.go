package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/yourorg/pdf-combine-kit/pkg/errors"
)

// HandleError maps an error onto the standard response envelope. Combine
// failures carry their own status codes and structured fields; anything
// unrecognized becomes an internal error.
func HandleError(c *gin.Context, err error) {
	appErr := errors.FromCombineError(err)

	errorInfo := &ErrorInfo{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	}
	if appErr.Err != nil {
		errorInfo.Details = appErr.Err.Error()
	}
	if len(appErr.Details) > 0 {
		errorInfo.Fields = appErr.Details
	}

	c.JSON(appErr.HTTPStatus, StandardResponse{
		Success: false,
		Error:   errorInfo,
	})
}

// BindJSON binds JSON request and handles errors
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid JSON request", err)
		return false
	}
	return true
}

// BindQuery binds query parameters and handles errors
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		BadRequest(c, "Invalid query parameters", err)
		return false
	}
	return true
}

// BindURI binds URI parameters and handles errors
func BindURI(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		BadRequest(c, "Invalid URI parameters", err)
		return false
	}
	return true
}
