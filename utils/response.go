package utils

import "github.com/gin-gonic/gin"

// JSONError is the uniform error body: a message for the client and nothing
// about internal connections.
type JSONError struct {
	Detail string `json:"detail"`
}

// Fail writes a structured error response with the given status code.
func Fail(ctx *gin.Context, status int, detail string) {
	ctx.JSON(status, JSONError{Detail: detail})
}
