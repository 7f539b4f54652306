// Package testing provides test utilities for the shardstate library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - WriteShardIdentity: Seeds a KV bucket with a shard identity document
//
// Example usage:
//
//	import (
//	    "testing"
//	    shardtest "github.com/arloliu/shardstate/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := shardtest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
