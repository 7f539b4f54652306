package types

import (
	"encoding/json"
	"fmt"
)

// ShardIdentity is the durable record stating which shard this process is and
// how to reach the config catalog.
//
// The record is set at most once per process lifetime and is immutable
// afterwards; only the config-server connection string's durable form may be
// refreshed when the config replica set's membership changes.
type ShardIdentity struct {
	// ShardName is this shard's cluster-wide unique name.
	ShardName string `json:"shardName"`

	// ClusterID is the opaque cluster identifier, fixed at cluster creation.
	ClusterID string `json:"clusterId"`

	// ConfigServer is the config catalog's replica-set connection string.
	ConfigServer ConnectionString `json:"configServer"`
}

// Validate checks the identity's semantic invariants.
//
// Returns:
//   - error: Description of the first violated invariant, nil if valid
func (si ShardIdentity) Validate() error {
	if si.ShardName == "" {
		return fmt.Errorf("shard name is empty")
	}
	if si.ClusterID == "" {
		return fmt.Errorf("cluster ID is not set")
	}
	if !si.ConfigServer.IsReplicaSet() {
		return fmt.Errorf("config server connection string %q must name a replica set", si.ConfigServer)
	}

	return nil
}

// ParseShardIdentity decodes a shard identity from its JSON document form and
// validates it.
//
// Parameters:
//   - doc: JSON document, e.g. the --override-shard-identity payload
//
// Returns:
//   - ShardIdentity: Decoded identity
//   - error: Decode or validation error
func ParseShardIdentity(doc []byte) (ShardIdentity, error) {
	var si ShardIdentity
	if err := json.Unmarshal(doc, &si); err != nil {
		return ShardIdentity{}, fmt.Errorf("failed to decode shard identity document: %w", err)
	}
	if err := si.Validate(); err != nil {
		return ShardIdentity{}, fmt.Errorf("invalid shard identity document: %w", err)
	}

	return si, nil
}

// String renders a compact human-readable form for logs.
func (si ShardIdentity) String() string {
	return fmt.Sprintf("{shardName: %s, clusterId: %s, configServer: %s}",
		si.ShardName, si.ClusterID, si.ConfigServer)
}
