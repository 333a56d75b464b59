package cmd_test

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmd "github.com/rohmanhakim/docsintel/internal/cli"
)

func compressedInventoryBody(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte("print py:function 1 library/functions.html#print -\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	header := "# Sphinx inventory version 2\n# Project: demo\n# Version: 1.0\n# The remainder of this file is compressed using zlib.\n"
	return append([]byte(header), buf.Bytes()...)
}

func newSphinxFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	})
	mux.HandleFunc("/objects.inv", func(w http.ResponseWriter, r *http.Request) {
		w.Write(compressedInventoryBody(t))
	})
	mux.HandleFunc("/index.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="generator" content="Sphinx 7.0.0"></head><body></body></html>`)
	})
	mux.HandleFunc("/library/functions.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><dl><dt id="print"><code>print(*objects, sep=' ')</code></dt><dd><p>Print objects to the text stream.</p></dd></dl></body></html>`)
	})
	return httptest.NewServer(mux)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	err := cmd.ExecuteForTest(out, args)
	return out.String(), err
}

func TestCLI_QueryInventory_JSON(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	out, err := runCLI(t, "query-inventory", srv.URL+"/", "print", "--display-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"print"`)
	assert.Contains(t, out, `"sphinx_objects_inv"`)
}

func TestCLI_QueryInventory_Markdown(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	out, err := runCLI(t, "query-inventory", srv.URL+"/", "print")
	require.NoError(t, err)
	assert.Contains(t, out, "print")
}

func TestCLI_QueryContent(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	out, err := runCLI(t, "query-content", srv.URL+"/", "print", "--results-max", "1", "--display-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "print(")
	assert.Contains(t, out, "Print objects")
}

func TestCLI_Detect(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	out, err := runCLI(t, "detect", srv.URL+"/", "--display-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"sphinx"`)
}

func TestCLI_SurveyProcessors(t *testing.T) {
	out, err := runCLI(t, "survey-processors", "sphinx", "--display-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"sphinx"`)
}

func TestCLI_SummarizeInventory(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	out, err := runCLI(t, "summarize-inventory", srv.URL+"/", "--group-by", "domain", "--display-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total"`)
}

func TestCLI_QueryInventory_BadFilter_ExitsWithArgError(t *testing.T) {
	_, err := runCLI(t, "query-inventory", "https://example.com/", "x", "--filters", "not-a-kv-pair")
	require.Error(t, err)
}

func TestCLI_Detect_RejectsUnknownGenus(t *testing.T) {
	_, err := runCLI(t, "detect", "https://example.com/", "--genus", "bogus")
	require.Error(t, err)
}

func TestCLI_ProcessorInavailability_RendersAsOmnierror(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()

	out, err := runCLI(t, "query-inventory", srv.URL+"/", "print", "--display-format", "json")
	require.Error(t, err)
	assert.Contains(t, out, "processor_inavailability")
}
