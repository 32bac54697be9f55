package server

import "github.com/gin-gonic/gin"

// Response is the envelope of every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func failure(c *gin.Context, code int, message string, err any) {
	c.AbortWithStatusJSON(code, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}
