package inventory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/docsintel/internal/httpcache"
	"github.com/rohmanhakim/docsintel/internal/inventory"
)

type allowAllRobots struct{}

func (allowAllRobots) CheckURL(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}

type denyAllRobots struct{}

func (denyAllRobots) CheckURL(context.Context, string) (bool, time.Duration, error) {
	return false, 0, nil
}

func TestSphinxProcessor_Detect_RobotsDisallowPropagates(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	proxy := httpcache.NewProxy(httpcache.Config{Robots: denyAllRobots{}})

	det, err := inventory.NewSphinxProcessor().Detect(context.Background(), proxy, server.URL)

	require.Nil(t, det)
	require.Error(t, err)
	assert.True(t, httpcache.IsRobotsDisallowed(err))
	assert.Equal(t, 0, hits, "robots denial must short-circuit before any request reaches the server")
}

func TestSphinxProcessor_Detect_AbsentFormatReturnsNilNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	proxy := httpcache.NewProxy(httpcache.Config{Robots: allowAllRobots{}})

	det, err := inventory.NewSphinxProcessor().Detect(context.Background(), proxy, server.URL)

	assert.Nil(t, det)
	assert.NoError(t, err)
}
