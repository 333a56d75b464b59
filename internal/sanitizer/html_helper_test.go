package sanitizer_test

import (
	"strings"

	"github.com/rohmanhakim/docsintel/internal/telemetry"
	"golang.org/x/net/html"
)

// mockMetadataSink is a test double for telemetry.Sink.
type mockMetadataSink struct {
	errors []telemetry.ErrorRecord
}

func (m *mockMetadataSink) RecordFetch(telemetry.FetchEvent)                   {}
func (m *mockMetadataSink) RecordDetection(telemetry.DetectionEvent)           {}
func (m *mockMetadataSink) RecordEviction(telemetry.EvictionEvent)             {}
func (m *mockMetadataSink) RecordRobotsDecision(telemetry.RobotsDecisionEvent) {}

func (m *mockMetadataSink) RecordError(record telemetry.ErrorRecord) {
	m.errors = append(m.errors, record)
}

var _ telemetry.Sink = (*mockMetadataSink)(nil)

// renderHtmlForTest serializes an html.Node to its HTML string representation.
// This is used to compare sanitized output against expected fixtures.
func renderHtmlForTest(node *html.Node) string {
	if node == nil {
		return ""
	}
	var buf strings.Builder
	html.Render(&buf, node)
	return buf.String()
}

// normalizeHtmlForTest removes whitespace variations for comparison
func normalizeHtmlForTest(s string) string {
	// Remove extra whitespace and normalize
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	var result []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return strings.Join(result, "\n")
}
