package httpcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbeCache_EvictsByCount(t *testing.T) {
	c := newProbeCache(2, time.Hour, time.Hour, nil)

	c.putSuccess("https://a.example.com/1", true)
	c.putSuccess("https://a.example.com/2", true)
	c.putSuccess("https://a.example.com/3", true)

	assert.Equal(t, 2, c.len())
	_, ok := c.getFresh("https://a.example.com/1")
	assert.False(t, ok)
}

func TestProbeCache_TTLExpiry(t *testing.T) {
	c := newProbeCache(10, 1*time.Millisecond, 1*time.Millisecond, nil)
	c.putSuccess("https://a.example.com/", true)

	time.Sleep(5 * time.Millisecond)

	_, ok := c.getFresh("https://a.example.com/")
	assert.False(t, ok)
}

func TestProbeCache_NonExistentResultCached(t *testing.T) {
	c := newProbeCache(10, time.Hour, time.Hour, nil)
	c.putSuccess("https://a.example.com/missing", false)

	entry, ok := c.getFresh("https://a.example.com/missing")
	assert.True(t, ok)
	assert.False(t, entry.exists)
}
