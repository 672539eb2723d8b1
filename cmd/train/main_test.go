package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fixnow-api/pkg/logger"
	"fixnow-api/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	out := t.TempDir()
	data := filepath.Join("..", "..", "pkg", "services", "testdata", "requests.csv")

	var buf bytes.Buffer
	log := logger.New(logger.Options{Format: "json", Writer: &buf})

	require.NoError(t, run([]string{"-data", data, "-out", out}, log))

	for _, name := range []string{services.ModelFileName, services.ZipMapFileName, services.TypeMapFileName} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, buf.String(), "training complete")
	assert.Contains(t, buf.String(), `"rows_used":7`)
}

func TestRunErrors(t *testing.T) {
	assert.Error(t, run([]string{"-data", filepath.Join(t.TempDir(), "missing.csv"), "-out", t.TempDir()}, logger.Nop()))
	assert.Error(t, run([]string{"-bogus"}, logger.Nop()))
	assert.Error(t, run([]string{"-out", t.TempDir(), "extra"}, logger.Nop()))
}
