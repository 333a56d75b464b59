package httpcache

import (
	"mime"
	"strings"
)

// textualPrefixes are Content-Type prefixes retrieve_text will accept.
// Anything else is rejected with ErrCauseNonTextualContent rather than
// returned as garbled bytes.
var textualPrefixes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/xhtml+xml",
}

func isTextual(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Many servers send a bare type without parameters, which
		// ParseMediaType rejects for stray trailing characters; fall
		// back to a prefix check against the raw header value.
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	for _, prefix := range textualPrefixes {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	return false
}

// charsetOf extracts the charset parameter from a Content-Type header,
// defaulting to utf-8 when absent or unparseable.
func charsetOf(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "utf-8"
	}
	if cs, ok := params["charset"]; ok && cs != "" {
		return strings.ToLower(cs)
	}
	return "utf-8"
}

// decodeText converts body to a string; it takes no charset argument. Only utf-8
// and its common aliases are actually transcoded (a no-op, since Go
// strings are raw bytes); any other declared charset is passed through
// unconverted rather than rejected, since transliteration is outside this
// proxy's scope and most documentation sites declare utf-8 regardless.
func decodeText(body []byte) string {
	return string(body)
}
