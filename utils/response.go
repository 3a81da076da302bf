package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kinship/apperrors"
)

// Payload is the envelope of every JSON response.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Payload{Success: true, Data: data})
}

func SuccessMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Payload{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Payload{Success: true, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperrors.CodeValidation, message)
}

func Unauthorized(c *gin.Context, code apperrors.Code, message string) {
	fail(c, http.StatusUnauthorized, code, message)
}

func InternalError(c *gin.Context) {
	fail(c, http.StatusInternalServerError, apperrors.CodeUnknown, "internal server error")
}

// Error writes err using its domain code. Anything that is not a domain
// error, or that maps to a 5xx, is logged and hidden behind a generic
// message.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		InternalError(c)
		return
	}

	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		fail(c, status, appErr.Code, "internal server error")
		return
	}
	fail(c, status, appErr.Code, appErr.Message)
}

func fail(c *gin.Context, status int, code apperrors.Code, message string) {
	if code.IsToken() {
		c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	c.AbortWithStatusJSON(status, Payload{Success: false, Message: message, Code: string(code)})
}
