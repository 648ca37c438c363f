// Package fingerprint derives a deterministic digest from the most recent
// scan records so a project re-scan can be told apart from a real change.
package fingerprint

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/minio/highwayhash"

	"github.com/lkowalski/repopulse/scanner"
)

// DefaultDepth is the number of leading records covered by a fingerprint.
const DefaultDepth = 5

// None is returned for an empty scan result.
const None = ""

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// canonicalRecord fixes both the field set and the key order of the
// serialized form; ModTime is floored to unix seconds so sub-second
// filesystem noise never changes the digest.
type canonicalRecord struct {
	ModifiedAt int64  `json:"modified_at"`
	Path       string `json:"relative_path"`
	Size       int64  `json:"size_bytes"`
}

// Of computes the digest of the top depth records of result, in their
// given order. Records beyond depth do not contribute.
func Of(result scanner.ScanResult, depth int) (string, error) {
	if len(result) == 0 {
		return None, nil
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	if depth > len(result) {
		depth = len(result)
	}
	canonical := make([]canonicalRecord, depth)
	for i := 0; i < depth; i++ {
		canonical[i] = canonicalRecord{
			ModifiedAt: result[i].ModTime.Unix(),
			Path:       result[i].Path,
			Size:       result[i].Size,
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(canonical); err != nil {
		return None, err
	}
	h, err := highwayhash.New128(key)
	if err != nil {
		return None, err
	}
	if _, err := h.Write(buf.Bytes()); err != nil {
		return None, err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
