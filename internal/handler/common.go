package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT numeric claims are decoded as float64 by the parser, so
// several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getPrincipal assembles the acting principal from the claims the JWT
// middleware stored in context. Every mutating service call receives
// this value explicitly.
func getPrincipal(c echo.Context) (service.Principal, error) {
	uid, err := getUserID(c)
	if err != nil {
		return service.Principal{}, err
	}
	role, ok := c.Get("role").(string)
	if !ok || role == "" {
		return service.Principal{}, errors.New("invalid role in context")
	}
	return service.Principal{UserID: uid, Role: role}, nil
}
