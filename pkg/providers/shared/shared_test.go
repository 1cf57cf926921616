package shared

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRotatorRoundRobin(t *testing.T) {
	r := NewHeaderRotator([]HeaderTemplate{
		{"User-Agent": "a"},
		{"User-Agent": "b"},
	})

	var got []string
	for i := 0; i < 4; i++ {
		req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
		r.Apply(req)
		got = append(got, req.Header.Get("User-Agent"))
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestDefaultHeaderTemplates(t *testing.T) {
	ts := DefaultHeaderTemplates("https://www.sepulsa.com")
	require.NotEmpty(t, ts)
	for _, tpl := range ts {
		assert.Equal(t, "https://www.sepulsa.com", tpl["Origin"])
		assert.NotEmpty(t, tpl["User-Agent"])
	}

	var nilRotator *HeaderRotator
	req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
	nilRotator.Apply(req)
	assert.Empty(t, req.Header.Get("User-Agent"))
}

func TestFirstMatch(t *testing.T) {
	re := regexp.MustCompile(`Tarif:\s*(\S+)`)
	assert.Equal(t, "R1/1300VA", FirstMatch(re, "Nama: X\nTarif: R1/1300VA"))
	assert.Equal(t, "", FirstMatch(re, "nothing"))
}

func TestCollapseSpace(t *testing.T) {
	in := "  Nama   Pelanggan \n\n\t JOHN  DOE  \n"
	assert.Equal(t, "Nama Pelanggan\nJOHN DOE", CollapseSpace(in))
}

func TestWriteFileAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteFileAtomically(path, strings.NewReader(`{"ok":true}`)))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(b))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestWriteFileAtomicallyLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomically(path, strings.NewReader("new")))
	require.Error(t, WriteFileAtomically(path, failingReader{}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "result.json", entries[0].Name())
}
