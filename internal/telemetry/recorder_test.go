package telemetry_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_RecordsEachEventKind(t *testing.T) {
	rec := telemetry.NewRecorder()

	rec.RecordFetch(telemetry.NewFetchEvent("https://docs.example.com/objects.inv", 200, 10*time.Millisecond, "application/octet-stream", false, true))
	rec.RecordDetection(telemetry.NewDetectionEvent("inventory", "sphinx", "https://docs.example.com", 1.0, ""))
	rec.RecordEviction(telemetry.NewEvictionEvent("content", "https://docs.example.com/x.html", "memory_cap"))
	rec.RecordRobotsDecision(telemetry.NewRobotsDecisionEvent("docs.example.com", "https://docs.example.com/api/", false, 0))
	rec.RecordError(telemetry.NewErrorRecord("httpcache", "retrieve_bytes", telemetry.CauseNetworkFailure, "timeout", time.Now(), telemetry.NewAttr(telemetry.AttrURL, "https://docs.example.com")))

	assert.Len(t, rec.Fetches, 1)
	assert.Len(t, rec.Detections, 1)
	assert.Len(t, rec.Evictions, 1)
	assert.Len(t, rec.RobotsDecisions, 1)
	assert.Len(t, rec.Errors, 1)

	assert.True(t, rec.Fetches[0].Coalesced())
	assert.Equal(t, "sphinx", rec.Detections[0].ProcessorName())
	assert.False(t, rec.RobotsDecisions[0].Allowed())
	assert.Equal(t, telemetry.CauseNetworkFailure, rec.Errors[0].Cause())
}

func TestNopSink_DiscardsEverything(t *testing.T) {
	var sink telemetry.Sink = telemetry.NopSink{}
	assert.NotPanics(t, func() {
		sink.RecordFetch(telemetry.FetchEvent{})
		sink.RecordDetection(telemetry.DetectionEvent{})
		sink.RecordEviction(telemetry.EvictionEvent{})
		sink.RecordRobotsDecision(telemetry.RobotsDecisionEvent{})
		sink.RecordError(telemetry.ErrorRecord{})
	})
}
