package types

import (
	"fmt"
	"strings"
)

// ConnectionString is the address set describing how to reach a replica set.
//
// The canonical text form is "setName/host:port,host:port". A connection
// string without a set name describes a standalone host, which is never a
// valid config-server address.
type ConnectionString struct {
	// SetName is the replica-set name ("" for a standalone host).
	SetName string `json:"setName"`

	// Hosts are the member addresses, in "host:port" form.
	Hosts []string `json:"hosts"`
}

// ParseConnectionString parses the "setName/host,host" text form.
//
// Parameters:
//   - s: Connection string text, e.g. "csrs/cfg1:27019,cfg2:27019"
//
// Returns:
//   - ConnectionString: Parsed value
//   - error: Parse error for empty input or an empty host list
func ParseConnectionString(s string) (ConnectionString, error) {
	if s == "" {
		return ConnectionString{}, fmt.Errorf("connection string is empty")
	}

	var cs ConnectionString

	hostPart := s
	if idx := strings.Index(s, "/"); idx >= 0 {
		cs.SetName = s[:idx]
		hostPart = s[idx+1:]
	}

	for _, h := range strings.Split(hostPart, ",") {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		cs.Hosts = append(cs.Hosts, h)
	}

	if len(cs.Hosts) == 0 {
		return ConnectionString{}, fmt.Errorf("connection string %q has no hosts", s)
	}

	return cs, nil
}

// IsReplicaSet reports whether the connection string names a replica set.
func (cs ConnectionString) IsReplicaSet() bool {
	return cs.SetName != "" && len(cs.Hosts) > 0
}

// String renders the canonical "setName/host,host" text form.
func (cs ConnectionString) String() string {
	hosts := strings.Join(cs.Hosts, ",")
	if cs.SetName == "" {
		return hosts
	}

	return cs.SetName + "/" + hosts
}

// Equal reports whether two connection strings describe the same address set.
//
// Host order is significant; topology updates always carry the full member
// list in monitor order.
func (cs ConnectionString) Equal(other ConnectionString) bool {
	if cs.SetName != other.SetName || len(cs.Hosts) != len(other.Hosts) {
		return false
	}
	for i, h := range cs.Hosts {
		if other.Hosts[i] != h {
			return false
		}
	}

	return true
}
