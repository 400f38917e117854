package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	APIVersion string    `json:"apiVersion"`
	Error      errorInfo `json:"error"`
}

type errorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("unhandled error", "path", ctx.Path(), "code", code, "error", err)
	}
	return ctx.Status(code).JSON(errorResponse{
		APIVersion: "1.0",
		Error: errorInfo{
			Code:    code,
			Message: message,
		},
	})
}
