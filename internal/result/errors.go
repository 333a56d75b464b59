// Package result implements the self-rendering result and error model: every
// success type and every domain exception can render itself as JSON or as
// Markdown, and every domain exception is a concrete Omnierror.
package result

import (
	"encoding/json"
	"fmt"
)

// Omnierror is the root of the exception hierarchy. Every concrete kind
// stores immutable context fields and implements both renderers; the
// interface mirrors the failure.ClassifiedError pattern used at lower
// layers but adds the title/message/suggestion triad the interface layer's
// interceptor needs to present a user-visible failure.
type Omnierror interface {
	error
	Title() string
	Message() string
	Suggestion() string
	RenderAsJSON() ([]byte, error)
	RenderAsMarkdown(revealInternals bool) string
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
}

func renderJSON(kind string, title, message, suggestion string, context map[string]string) ([]byte, error) {
	return json.Marshal(errorEnvelope{
		Error: errorBody{
			Type:       kind,
			Title:      title,
			Message:    message,
			Suggestion: suggestion,
			Context:    context,
		},
	})
}

func renderMarkdown(title, message, suggestion string, revealInternals bool, context map[string]string) string {
	out := fmt.Sprintf("**%s**\n\n%s\n", title, message)
	if suggestion != "" {
		out += fmt.Sprintf("\n_Suggestion: %s_\n", suggestion)
	}
	if revealInternals && len(context) > 0 {
		out += "\n| field | value |\n|---|---|\n"
		for k, v := range context {
			out += fmt.Sprintf("| %s | %s |\n", k, v)
		}
	}
	return out
}

// ProcessorInavailability means no registered processor of the requested
// genus reached the confidence threshold for a location, even after every
// URL pattern extension was tried.
type ProcessorInavailability struct {
	Source               string
	Genus                string
	URLPatternsAttempted []string
}

func (e *ProcessorInavailability) Error() string {
	return fmt.Sprintf("no %s processor qualified for %q after %d pattern(s) attempted", e.Genus, e.Source, len(e.URLPatternsAttempted))
}

func (e *ProcessorInavailability) Title() string { return "No matching documentation format" }

func (e *ProcessorInavailability) Message() string {
	return fmt.Sprintf("Could not detect a %s documentation format at %q.", e.Genus, e.Source)
}

func (e *ProcessorInavailability) Suggestion() string {
	return "Verify the URL points to a supported documentation format (Sphinx, MkDocs, or Pydoctor)."
}

func (e *ProcessorInavailability) context() map[string]string {
	return map[string]string{
		"source":                 e.Source,
		"genus":                  e.Genus,
		"url_patterns_attempted": fmt.Sprintf("%v", e.URLPatternsAttempted),
	}
}

func (e *ProcessorInavailability) RenderAsJSON() ([]byte, error) {
	return renderJSON("processor_inavailability", e.Title(), e.Message(), e.Suggestion(), e.context())
}

func (e *ProcessorInavailability) RenderAsMarkdown(revealInternals bool) string {
	return renderMarkdown(e.Title(), e.Message(), e.Suggestion(), revealInternals, e.context())
}

// InventoryInaccessibility means the inventory file could not be fetched
// (network failure, timeout, robots denial, HTTP >= 400).
type InventoryInaccessibility struct {
	Source string
	Cause  string
}

func (e *InventoryInaccessibility) Error() string {
	return fmt.Sprintf("inventory at %q inaccessible: %s", e.Source, e.Cause)
}
func (e *InventoryInaccessibility) Title() string { return "Inventory unreachable" }
func (e *InventoryInaccessibility) Message() string {
	return fmt.Sprintf("Could not retrieve the inventory at %q: %s.", e.Source, e.Cause)
}
func (e *InventoryInaccessibility) Suggestion() string {
	return "Check that the URL is reachable and not blocked by robots.txt."
}
func (e *InventoryInaccessibility) context() map[string]string {
	return map[string]string{"source": e.Source, "cause": e.Cause}
}
func (e *InventoryInaccessibility) RenderAsJSON() ([]byte, error) {
	return renderJSON("inventory_inaccessibility", e.Title(), e.Message(), e.Suggestion(), e.context())
}
func (e *InventoryInaccessibility) RenderAsMarkdown(revealInternals bool) string {
	return renderMarkdown(e.Title(), e.Message(), e.Suggestion(), revealInternals, e.context())
}

// InventoryInvalidity means the inventory was fetched but could not be
// parsed (malformed zlib stream, unparseable JSON, missing required fields).
type InventoryInvalidity struct {
	Source string
	Reason string
}

func (e *InventoryInvalidity) Error() string {
	return fmt.Sprintf("inventory at %q invalid: %s", e.Source, e.Reason)
}
func (e *InventoryInvalidity) Title() string { return "Inventory unparseable" }
func (e *InventoryInvalidity) Message() string {
	return fmt.Sprintf("The inventory at %q could not be parsed: %s.", e.Source, e.Reason)
}
func (e *InventoryInvalidity) Suggestion() string {
	return "The site may use a non-standard or unsupported inventory format."
}
func (e *InventoryInvalidity) context() map[string]string {
	return map[string]string{"source": e.Source, "reason": e.Reason}
}
func (e *InventoryInvalidity) RenderAsJSON() ([]byte, error) {
	return renderJSON("inventory_invalidity", e.Title(), e.Message(), e.Suggestion(), e.context())
}
func (e *InventoryInvalidity) RenderAsMarkdown(revealInternals bool) string {
	return renderMarkdown(e.Title(), e.Message(), e.Suggestion(), revealInternals, e.context())
}

// DocumentationInaccessibility means a specific content page could not be
// fetched during extraction.
type DocumentationInaccessibility struct {
	URL   string
	Cause string
}

func (e *DocumentationInaccessibility) Error() string {
	return fmt.Sprintf("documentation page %q inaccessible: %s", e.URL, e.Cause)
}
func (e *DocumentationInaccessibility) Title() string { return "Documentation page unreachable" }
func (e *DocumentationInaccessibility) Message() string {
	return fmt.Sprintf("Could not retrieve %q: %s.", e.URL, e.Cause)
}
func (e *DocumentationInaccessibility) Suggestion() string { return "" }
func (e *DocumentationInaccessibility) context() map[string]string {
	return map[string]string{"url": e.URL, "cause": e.Cause}
}
func (e *DocumentationInaccessibility) RenderAsJSON() ([]byte, error) {
	return renderJSON("documentation_inaccessibility", e.Title(), e.Message(), e.Suggestion(), e.context())
}
func (e *DocumentationInaccessibility) RenderAsMarkdown(revealInternals bool) string {
	return renderMarkdown(e.Title(), e.Message(), e.Suggestion(), revealInternals, e.context())
}

// DocumentationParseFailure means a content page was fetched but its HTML
// structure was not recognized by the selected processor's theme heuristics.
type DocumentationParseFailure struct {
	URL    string
	Reason string
}

func (e *DocumentationParseFailure) Error() string {
	return fmt.Sprintf("could not parse %q: %s", e.URL, e.Reason)
}
func (e *DocumentationParseFailure) Title() string { return "Could not extract content" }
func (e *DocumentationParseFailure) Message() string {
	return fmt.Sprintf("The page at %q did not match the expected structure: %s.", e.URL, e.Reason)
}
func (e *DocumentationParseFailure) Suggestion() string {
	return "Enable mkdocstrings (MkDocs) or verify the theme is one of the supported themes."
}
func (e *DocumentationParseFailure) context() map[string]string {
	return map[string]string{"url": e.URL, "reason": e.Reason}
}
func (e *DocumentationParseFailure) RenderAsJSON() ([]byte, error) {
	return renderJSON("documentation_parse_failure", e.Title(), e.Message(), e.Suggestion(), e.context())
}
func (e *DocumentationParseFailure) RenderAsMarkdown(revealInternals bool) string {
	return renderMarkdown(e.Title(), e.Message(), e.Suggestion(), revealInternals, e.context())
}

// RobotsTxtBlockedUrl means robots.txt disallows user_agent from fetching url.
type RobotsTxtBlockedUrl struct {
	URL       string
	UserAgent string
}

func (e *RobotsTxtBlockedUrl) Error() string {
	return fmt.Sprintf("robots.txt disallows %q from fetching %q", e.UserAgent, e.URL)
}
func (e *RobotsTxtBlockedUrl) Title() string { return "Blocked by robots.txt" }
func (e *RobotsTxtBlockedUrl) Message() string {
	return fmt.Sprintf("%q disallows fetching %q for user-agent %q.", "robots.txt", e.URL, e.UserAgent)
}
func (e *RobotsTxtBlockedUrl) Suggestion() string {
	return "This site's robots.txt disallows automated access to this path."
}
func (e *RobotsTxtBlockedUrl) context() map[string]string {
	return map[string]string{"url": e.URL, "user_agent": e.UserAgent}
}
func (e *RobotsTxtBlockedUrl) RenderAsJSON() ([]byte, error) {
	return renderJSON("robots_txt_blocked_url", e.Title(), e.Message(), e.Suggestion(), e.context())
}
func (e *RobotsTxtBlockedUrl) RenderAsMarkdown(revealInternals bool) string {
	return renderMarkdown(e.Title(), e.Message(), e.Suggestion(), revealInternals, e.context())
}
