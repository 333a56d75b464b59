package rpc

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohmanhakim/docsintel/internal/config"
	"github.com/rohmanhakim/docsintel/internal/engine"
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

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)
	return &handlers{engine: engine.New(cfg, nil)}
}

func TestHandlers_QueryInventory_SphinxFixture(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	h := newTestHandlers(t)
	res, _, err := h.QueryInventory(context.Background(), nil, QueryInventoryArgs{
		Location: srv.URL + "/",
		Term:     "print",
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"print"`)
}

func TestHandlers_QueryContent_DefaultsResultsMaxAndLinesMax(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	h := newTestHandlers(t)
	res, _, err := h.QueryContent(context.Background(), nil, QueryContentArgs{
		Location: srv.URL + "/",
		Term:     "print",
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "print(")
	assert.Contains(t, text, "Print objects")
}

func TestHandlers_SummarizeInventory(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	h := newTestHandlers(t)
	res, _, err := h.SummarizeInventory(context.Background(), nil, SummarizeInventoryArgs{
		Location: srv.URL + "/",
		GroupBy:  "domain",
	})
	require.NoError(t, err)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"total"`)
}

func TestHandlers_Detect(t *testing.T) {
	srv := newSphinxFixtureServer(t)
	defer srv.Close()

	h := newTestHandlers(t)
	res, _, err := h.Detect(context.Background(), nil, DetectArgs{Location: srv.URL + "/"})
	require.NoError(t, err)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"sphinx"`)
}

func TestHandlers_SurveyProcessors(t *testing.T) {
	h := newTestHandlers(t)
	res, _, err := h.SurveyProcessors(context.Background(), nil, SurveyProcessorsArgs{ProcessorName: "sphinx"})
	require.NoError(t, err)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"sphinx"`)
}

func TestHandlers_QueryInventory_ProcessorInavailability_RendersAsToolOutputNotError(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()

	h := newTestHandlers(t)
	res, _, err := h.QueryInventory(context.Background(), nil, QueryInventoryArgs{
		Location: srv.URL + "/",
		Term:     "print",
	})
	require.NoError(t, err)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "processor_inavailability")
}
