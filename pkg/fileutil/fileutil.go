package fileutil

import (
	"mime"
	"path/filepath"
	"strings"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// ContentType guesses the MIME type of a file:// URL path from its
// extension, defaulting to "application/octet-stream" for unknown or
// missing extensions. It mirrors the Content-Type sniffing the HTTP cache
// proxy applies to network responses, so file:// and http(s):// retrieval
// share one textual-content validation path.
func ContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return "application/octet-stream"
	}

	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		return "application/json"
	case "txt", "md", "rst":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
