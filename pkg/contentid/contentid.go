// Package contentid implements the stable, reversible identifier used to
// name a single (location_url, object_name) pair across query boundaries.
package contentid

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const separator = ":"

// Encode returns the content_id for the given location URL and object name:
// base64(location_url + ":" + name), using the URL-safe alphabet so the
// result is transport-safe in query strings and JSON without escaping.
func Encode(locationURL, name string) string {
	raw := locationURL + separator + name
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// Decode reverses Encode, returning the original (locationURL, name) pair.
// It fails if id is not valid base64 or does not contain the separator.
// Splitting uses the LAST occurrence of ":" rather than the first: location
// URLs always contain a scheme colon ("https://...", and sometimes a port
// colon), while object names are qualified identifiers that do not contain
// ":" (Sphinx's "domain:role" pair lives in specifics, not in name).
func Decode(id string) (locationURL, name string, err error) {
	decoded, err := base64.URLEncoding.DecodeString(id)
	if err != nil {
		return "", "", fmt.Errorf("contentid: invalid encoding: %w", err)
	}

	raw := string(decoded)
	idx := strings.LastIndex(raw, separator)
	if idx < 0 {
		return "", "", fmt.Errorf("contentid: malformed content_id %q", id)
	}

	return raw[:idx], raw[idx+1:], nil
}
