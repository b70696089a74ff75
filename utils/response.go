package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SuccessEnvelope is the uniform structure for successful API responses.
type SuccessEnvelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// ErrorEnvelope is the uniform structure for failed API responses.
type ErrorEnvelope struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Errors    []string `json:"errors"`
	Timestamp string   `json:"timestamp"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Respond writes a success envelope with the given status code.
func Respond(ctx *gin.Context, status int, message string, data interface{}) {
	ctx.JSON(status, SuccessEnvelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

// Success returns a standard 200 success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, "success", data)
}

// SuccessMsg returns a 200 success response with a custom message.
func SuccessMsg(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, 200, message, data)
}

// Created returns a 201 success response.
func Created(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, 201, message, data)
}

// Error returns a standard error response without field details.
func Error(ctx *gin.Context, status int, message string) {
	ErrorWithDetails(ctx, status, message, nil)
}

// ErrorWithDetails returns an error response carrying per-field error strings.
func ErrorWithDetails(ctx *gin.Context, status int, message string, errs []string) {
	if errs == nil {
		errs = []string{}
	}
	ctx.JSON(status, ErrorEnvelope{
		Success:   false,
		Message:   message,
		Errors:    errs,
		Timestamp: timestamp(),
	})
}
