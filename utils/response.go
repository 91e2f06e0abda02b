package utils

import (
	"net/http"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondOK writes a 200 envelope.
func RespondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// RespondCreated writes a 201 envelope.
func RespondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

// RespondError maps a domain error onto the envelope. Unclassified errors
// become 500s; their internals are only echoed outside production.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	message := "Internal server error"

	if appErr, ok := AsAppError(err); ok && appErr.Kind != KindInternal {
		message = appErr.Message
	} else if !config.IsProduction() {
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		GetLogger().Warn("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, APIResponse{Success: false, Message: message})
}
