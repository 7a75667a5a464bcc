package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "factura-scanner.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps an error to its HTTP representation. AppErrors carry their own
// status; anything else is a 500 with a generic message.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if e, ok := err.(*domainerrors.AppError); ok {
		appErr = e
	} else {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Code, gin.H{
		"status":  "error",
		"message": appErr.Message,
	})
}

// ErrorWithStatus sends an error response with an explicit status.
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}
