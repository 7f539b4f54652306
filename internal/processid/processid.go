// Package processid generates distributed-lock process identifiers.
package processid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/xxh3"
)

// Generate produces a distributed-lock process identifier.
//
// The identifier names this process instance in the cluster's distributed-lock
// bookkeeping. It must be unique across process restarts on the same host, so
// it combines the hostname with a hash of (pid, start time, random nonce).
//
// Format: "<hostname>:<pid>:<16 hex digits>".
//
// Returns:
//   - string: The generated identifier
func Generate() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}

	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[:8], uint64(os.Getpid()))              //nolint:gosec // pid is non-negative
	binary.LittleEndian.PutUint64(seed[8:], uint64(time.Now().UnixNano()))    //nolint:gosec // wraparound is harmless here
	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err == nil {
		for i := range nonce {
			seed[i] ^= nonce[i]
		}
	}

	h := xxh3.Hash(seed[:])

	return fmt.Sprintf("%s:%d:%016x", host, os.Getpid(), h)
}
