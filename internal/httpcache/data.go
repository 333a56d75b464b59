package httpcache

import (
	"time"

	"github.com/rohmanhakim/docsintel/pkg/hashutil"
)

// contentEntry is one value in the content cache: either response bytes
// (success) or an error marker (negative cache), with bookkeeping used for
// byte-cap eviction and ttl expiry.
type contentEntry struct {
	body        []byte
	contentType string
	contentHash string
	isError     bool
	errMessage  string
	bytesUsed   int
	insertedAt  time.Time
	lastAccess  time.Time
	ttl         time.Duration
}

// hashBody computes the content-integrity fingerprint stored alongside every
// successful cache entry. blake3 is used over sha256 for its speed on the
// large page/inventory bodies this cache holds; a hash failure (neither
// algorithm can fail on well-formed input) degrades to an empty fingerprint
// rather than dropping the entry.
func hashBody(body []byte) string {
	hash, err := hashutil.HashBytes(body, hashutil.HashAlgoBLAKE3)
	if err != nil {
		return ""
	}
	return hash
}

func (e *contentEntry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// probeEntry is one value in the probe cache: whether the URL exists, or an
// error marker, with its own ttl.
type probeEntry struct {
	exists     bool
	isError    bool
	errMessage string
	insertedAt time.Time
	ttl        time.Duration
}

func (e *probeEntry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// entryOverheadBytes approximates the bookkeeping cost of one cache entry
// beyond its raw body, so tiny responses still count meaningfully against
// the memory cap.
const entryOverheadBytes = 128

func bytesUsedFor(body []byte) int {
	return len(body) + entryOverheadBytes
}
