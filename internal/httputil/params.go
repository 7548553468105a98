package httputil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/harborline/cargosim/internal/domain"
)

// PositiveInt64Param parses a chi URL parameter that must be a positive integer.
func PositiveInt64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, &domain.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return v, nil
}

// PositiveIntParam is PositiveInt64Param for int-sized values.
func PositiveIntParam(r *http.Request, name string) (int, error) {
	v, err := PositiveInt64Param(r, name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// RequiredParam returns a non-blank chi URL parameter.
func RequiredParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", &domain.ValidationError{Field: name, Message: "is required"}
	}
	return v, nil
}
