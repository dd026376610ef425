package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Response is the envelope every panel endpoint returns.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

func envelope(data any, message string) Response {
	return Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// OK writes a 200 envelope with data.
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope(data, ""))
}

// OKMessage writes a 200 envelope with data and a human-readable message.
func OKMessage(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, envelope(data, message))
}

// Created writes a 201 envelope with data.
func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, envelope(data, ""))
}
