package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCodeMapping(t *testing.T) {
	m, dups, err := LoadCodeMapping(filepath.Join("testdata", "zip_code_map.csv"), "zip_code", "zip_code_code")
	require.NoError(t, err)
	assert.Empty(t, dups)

	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []string{"10001", "10002", "10003", "11201"}, m.Keys(0))

	code, ok := m.Lookup(" 10003")
	assert.True(t, ok)
	assert.Equal(t, 2, code)

	_, ok = m.Lookup("99999")
	assert.False(t, ok)
}

func TestCodeMappingKeysLimit(t *testing.T) {
	m, _, err := LoadCodeMapping(filepath.Join("testdata", "request_type_map.csv"), "issue_type_reduced", "request_type_code")
	require.NoError(t, err)

	assert.Equal(t, []string{"Noise", "Heat/Hot Water"}, m.Keys(2))
	assert.Len(t, m.Keys(45), 4)
	assert.Len(t, m.Keys(5), 4)

	// 返されたスライスを変更しても元のマッピングに影響しない
	keys := m.Keys(1)
	keys[0] = "changed"
	assert.Equal(t, "Noise", m.Keys(1)[0])

	assert.NotNil(t, NewCodeMapping("empty").Keys(5))
}

func TestLoadCodeMappingDuplicates(t *testing.T) {
	path := writeTempFile(t, "map.csv", "issue_type_reduced,request_type_code\nNoise,2\nHeat,0\nNoise ,5\nNoise,5\n")

	m, dups, err := LoadCodeMapping(path, "issue_type_reduced", "request_type_code")
	require.NoError(t, err)

	require.Len(t, dups, 1)
	assert.Equal(t, DuplicateLabel{Label: "Noise", Previous: 2, Code: 5}, dups[0])

	code, _ := m.Lookup("Noise")
	assert.Equal(t, 5, code)
	assert.Equal(t, []string{"Noise", "Heat"}, m.Keys(0))
}

func TestLoadCodeMappingCodes(t *testing.T) {
	path := writeTempFile(t, "map.csv", "zip_code,zip_code_code\n10001,3.0\n,7\n10002,4\n")

	m, _, err := LoadCodeMapping(path, "zip_code", "zip_code_code")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	code, ok := m.Lookup("10001")
	assert.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestLoadCodeMappingErrors(t *testing.T) {
	_, _, err := LoadCodeMapping(filepath.Join("testdata", "missing.csv"), "zip_code", "zip_code_code")
	assert.Error(t, err)

	path := writeTempFile(t, "map.csv", "zip,code\n10001,0\n")
	_, _, err = LoadCodeMapping(path, "zip_code", "zip_code_code")
	assert.Error(t, err)

	for _, bad := range []string{"abc", "1.5", "-1", "NaN"} {
		path := writeTempFile(t, "map.csv", "zip_code,zip_code_code\n10001,"+bad+"\n")
		_, _, err := LoadCodeMapping(path, "zip_code", "zip_code_code")
		assert.Error(t, err, "code %q", bad)
	}

	path = writeTempFile(t, "map.csv", "zip_code,zip_code_code\n10001,0\n10002,1,9\n")
	_, _, err = LoadCodeMapping(path, "zip_code", "zip_code_code")
	assert.ErrorContains(t, err, "line 3: 3 fields, header has 2")

	path = writeTempFile(t, "empty.csv", "")
	_, _, err = LoadCodeMapping(path, "zip_code", "zip_code_code")
	assert.Error(t, err)
}

func TestCodeMappingWriteCSVRoundTrip(t *testing.T) {
	m := NewCodeMapping("issue_type_reduced")
	m.Set("Noise", 2)
	m.Set("Heat/Hot Water", 0)
	m.Set("Street, Condition", 1)

	path := filepath.Join(t.TempDir(), "request_type_map.csv")
	require.NoError(t, m.WriteCSV(path, "issue_type_reduced", "request_type_code"))

	got, dups, err := LoadCodeMapping(path, "issue_type_reduced", "request_type_code")
	require.NoError(t, err)
	assert.Empty(t, dups)
	assert.Equal(t, m.Keys(0), got.Keys(0))
	for _, k := range m.Keys(0) {
		want, _ := m.Lookup(k)
		code, ok := got.Lookup(k)
		assert.True(t, ok)
		assert.Equal(t, want, code)
	}
}
