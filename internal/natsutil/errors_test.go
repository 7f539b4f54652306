package natsutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "nats timeout", err: nats.ErrTimeout, want: true},
		{name: "no servers", err: nats.ErrNoServers, want: true},
		{name: "disconnected", err: nats.ErrDisconnected, want: true},
		{name: "connection closed", err: nats.ErrConnectionClosed, want: true},
		{name: "wrapped timeout", err: fmt.Errorf("update failed: %w", nats.ErrTimeout), want: true},
		{name: "connection refused text", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "io timeout text", err: errors.New("read: i/o timeout"), want: true},
		{name: "unrelated error", err: errors.New("document malformed"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}
