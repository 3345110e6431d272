package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// requestUserID extracts the authenticated user's ID placed in the context
// by the bearer-token middleware. Handlers treat a missing or empty value
// as an unauthenticated request.
func requestUserID(c echo.Context) (string, error) {
	v, ok := c.Get("user_id").(string)
	if !ok || v == "" {
		return "", errors.New("unauthenticated")
	}
	return v, nil
}
