package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteData_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteData(w, zerolog.Nop(), http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, body["data"])
	assert.Contains(t, body["metadata"], "timestamp")
}

func TestWriteError_Mapping(t *testing.T) {
	var fieldErrs domain.ValidationErrors
	fieldErrs.Add("SBY-XXX-Dry", "unknown destination port")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"single validation", &domain.ValidationError{Field: "week", Message: "must be positive"}, http.StatusBadRequest},
		{"validation list", fieldErrs, http.StatusBadRequest},
		{"row errors", domain.RowErrors{{Row: 2, Field: "origin", Message: "unknown"}}, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("summary: %w", domain.ErrNotFound), http.StatusNotFound},
		{"internal", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, zerolog.Nop(), tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestWriteError_InternalDetailsHidden(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, zerolog.Nop(), fmt.Errorf("secret table name"))
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"week 1"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "week 1", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(req, &dst)
	assert.True(t, domain.IsValidation(err))
}
