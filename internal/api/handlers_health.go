package api

import (
	"github.com/labstack/echo/v4"
)

// HandleHealth is the liveness probe.
func HandleHealth(c echo.Context) error {
	return OK(c, map[string]string{"status": "ok"})
}
