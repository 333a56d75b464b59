package telemetry

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
)

// Level filters which events a FileSink actually writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// ParseLevel maps a --log-level flag value onto a Level, defaulting to
// LevelInfo for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// FileSink writes each event as one JSON line to w, dropping events below
// its configured level. It is the CLI's --log-file backend: every engine
// component writes through the telemetry.Sink port, so the file sink
// never sits on the detection/caching/retry decision path.
type FileSink struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

func NewFileSink(w io.Writer, level Level) *FileSink {
	return &FileSink{w: w, level: level}
}

func (s *FileSink) write(level Level, payload map[string]any) {
	if level < s.level {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = json.NewEncoder(s.w).Encode(payload)
}

func (s *FileSink) RecordFetch(e FetchEvent) {
	s.write(LevelDebug, map[string]any{
		"kind":         "fetch",
		"url":          e.URL(),
		"status":       e.HTTPStatus(),
		"duration_ms":  e.Duration().Milliseconds(),
		"content_type": e.ContentType(),
		"from_cache":   e.FromCache(),
		"coalesced":    e.Coalesced(),
	})
}

func (s *FileSink) RecordDetection(e DetectionEvent) {
	s.write(LevelInfo, map[string]any{
		"kind":       "detection",
		"genus":      e.Genus(),
		"processor":  e.ProcessorName(),
		"location":   e.Location(),
		"confidence": e.Confidence(),
		"via_pattern": e.ViaPattern(),
	})
}

func (s *FileSink) RecordEviction(e EvictionEvent) {
	s.write(LevelDebug, map[string]any{
		"kind":   "eviction",
		"cache":  e.CacheName(),
		"key":    e.Key(),
		"reason": e.Reason(),
	})
}

func (s *FileSink) RecordRobotsDecision(e RobotsDecisionEvent) {
	s.write(LevelDebug, map[string]any{
		"kind":     "robots_decision",
		"host":     e.Host(),
		"url":      e.URL(),
		"allowed":  e.Allowed(),
		"delay_ms": e.Delay().Milliseconds(),
	})
}

func (s *FileSink) RecordError(e ErrorRecord) {
	s.write(LevelError, map[string]any{
		"kind":        "error",
		"package":     e.PackageName(),
		"action":      e.Action(),
		"cause":       e.Cause(),
		"error":       e.ErrorString(),
		"observed_at": e.ObservedAt(),
	})
}
