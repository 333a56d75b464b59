package telemetry

/*
Metadata Collected
- Cache hit/miss/eviction events, per cache
- Detection attempts and their confidence, per processor and genus
- Robots compliance decisions and crawl-delay waits
- Fetch timestamps, HTTP status codes, durations

Logging Goals
- Debuggable detection behavior
- Post-run auditability of which processor served a query
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Confidence scores
- Status codes
- Durations
- Identifiers (processor name, cache name)
*/

// Sink is the observability port every engine component writes through.
// Implementations MUST treat every method as fire-and-forget: a Sink must
// never be consulted to decide detection, caching, or retry behavior.
type Sink interface {
	RecordFetch(event FetchEvent)
	RecordDetection(event DetectionEvent)
	RecordEviction(event EvictionEvent)
	RecordRobotsDecision(event RobotsDecisionEvent)
	RecordError(record ErrorRecord)
}

// NopSink discards every event. It is the default Sink for callers that do
// not need observability (tests, one-off CLI invocations without --log-file).
type NopSink struct{}

func (NopSink) RecordFetch(FetchEvent)                 {}
func (NopSink) RecordDetection(DetectionEvent)         {}
func (NopSink) RecordEviction(EvictionEvent)           {}
func (NopSink) RecordRobotsDecision(RobotsDecisionEvent) {}
func (NopSink) RecordError(ErrorRecord)                {}

// Recorder is a Sink that buffers events in memory, primarily useful for
// tests that need to assert which events were recorded during a query.
type Recorder struct {
	Fetches          []FetchEvent
	Detections       []DetectionEvent
	Evictions        []EvictionEvent
	RobotsDecisions  []RobotsDecisionEvent
	Errors           []ErrorRecord
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordFetch(event FetchEvent) {
	r.Fetches = append(r.Fetches, event)
}

func (r *Recorder) RecordDetection(event DetectionEvent) {
	r.Detections = append(r.Detections, event)
}

func (r *Recorder) RecordEviction(event EvictionEvent) {
	r.Evictions = append(r.Evictions, event)
}

func (r *Recorder) RecordRobotsDecision(event RobotsDecisionEvent) {
	r.RobotsDecisions = append(r.RobotsDecisions, event)
}

func (r *Recorder) RecordError(record ErrorRecord) {
	r.Errors = append(r.Errors, record)
}
