// Package runid derives short identifiers for individual edge detector
// invocations so log lines, error context and crash reports can be
// correlated.
package runid

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Length is the number of hex characters in an id.
const Length = 12

// New returns the id for argv started at ts. The same argv and timestamp
// always yield the same id.
func New(argv []string, ts time.Time) string {
	h := blake3.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ts.UnixNano()))
	_, _ = h.Write(buf[:])
	for _, a := range argv {
		// length-prefix each argument so ["ab","c"] and ["a","bc"] differ
		binary.BigEndian.PutUint64(buf[:], uint64(len(a)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(a))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:Length]
}

// Now is New with the current time.
func Now(argv []string) string {
	return New(argv, time.Now())
}
