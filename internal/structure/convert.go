package structure

import (
	"errors"

	"golang.org/x/net/html"

	"github.com/rohmanhakim/docsintel/internal/mdconvert"
	"github.com/rohmanhakim/docsintel/internal/sanitizer"
	"github.com/rohmanhakim/docsintel/internal/telemetry"
)

// convertDescription runs a description node through the shared sanitizer
// and Markdown conversion pipeline and validates the result, so every
// processor applies identical content-quality rules.
func convertDescription(node *html.Node) (string, error) {
	if node == nil {
		return "", errors.New("empty description node")
	}

	sanitized := sanitizer.NewSanitizedHTMLDoc(node, nil)
	result, convErr := mdconvert.NewRule(telemetry.NopSink{}).Convert(sanitized)
	if convErr != nil {
		return "", convErr
	}

	content := result.GetMarkdownContent()
	if !validateDescription(content) {
		return "", errors.New("converted description carries no recognizable content")
	}

	return string(content), nil
}
