package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"invoicer/internal/apperror"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// statusFor maps domain errors onto HTTP status codes for the CRUD endpoints.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidArgument),
		errors.Is(err, apperror.ErrInvalidRange),
		errors.Is(err, apperror.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Invalid(name, fmt.Sprintf("%q is not a valid id", c.Param(name)))
	}
	return uint(id), nil
}

func queryUint(c *gin.Context, key string, def uint) (uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperror.Invalid(key, fmt.Sprintf("%q is not a valid id", raw))
	}
	return uint(v), nil
}

// queryDate reads a YYYY-MM-DD or RFC 3339 value in UTC. A bare date used as
// the end of a range covers the whole day.
func queryDate(c *gin.Context, key string, def time.Time, endOfDay bool) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperror.Invalid(key, fmt.Sprintf("%q is not a date", raw))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func queryFloat(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.Invalid(key, fmt.Sprintf("%q is not a number", raw))
	}
	return &v, nil
}
