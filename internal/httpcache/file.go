package httpcache

import (
	"net/url"
	"os"

	"github.com/rohmanhakim/docsintel/pkg/fileutil"
)

// readFileURL reads the local path named by a file:// URL, returning its
// bytes and a content type guessed from the file extension. file:// reads
// bypass robots checks, rate limiting, and coalescing entirely — those
// exist to be a polite network citizen, which has no meaning for local
// paths.
func readFileURL(rawURL string) ([]byte, string, *CacheError) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", &CacheError{Message: err.Error(), Retryable: false, Cause: ErrCauseUnsupportedScheme}
	}

	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", &CacheError{Message: err.Error(), Retryable: false, Cause: ErrCauseFileNotFound}
		}
		return nil, "", &CacheError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadBodyFailure}
	}

	return body, fileutil.ContentType(path), nil
}

func fileURLExists(rawURL string) (bool, *CacheError) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, &CacheError{Message: err.Error(), Retryable: false, Cause: ErrCauseUnsupportedScheme}
	}

	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}

	_, statErr := os.Stat(path)
	if statErr == nil {
		return true, nil
	}
	if os.IsNotExist(statErr) {
		return false, nil
	}
	return false, &CacheError{Message: statErr.Error(), Retryable: true, Cause: ErrCauseReadBodyFailure}
}
