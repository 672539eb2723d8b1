package handler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerUnavailableWithoutData(t *testing.T) {
	t.Setenv("DATASET_PATH", filepath.Join(t.TempDir(), "missing.csv"))
	t.Setenv("LOG_LEVEL", "disabled")

	w := httptest.NewRecorder()
	Handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "service unavailable")
}
