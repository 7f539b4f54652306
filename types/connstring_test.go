package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ConnectionString
		wantErr bool
	}{
		{
			name:  "replica set with two hosts",
			input: "configRS/cfg1:27019,cfg2:27019",
			want: ConnectionString{
				SetName: "configRS",
				Hosts:   []string{"cfg1:27019", "cfg2:27019"},
			},
		},
		{
			name:  "standalone host",
			input: "db1:27017",
			want: ConnectionString{
				Hosts: []string{"db1:27017"},
			},
		},
		{
			name:  "whitespace around hosts is trimmed",
			input: "rs0/a:1, b:2 ,c:3",
			want: ConnectionString{
				SetName: "rs0",
				Hosts:   []string{"a:1", "b:2", "c:3"},
			},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "set name without hosts",
			input:   "rs0/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConnectionString(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnectionString_StringRoundTrip(t *testing.T) {
	cs, err := ParseConnectionString("configRS/cfg1:27019,cfg2:27019")
	require.NoError(t, err)

	assert.Equal(t, "configRS/cfg1:27019,cfg2:27019", cs.String())

	again, err := ParseConnectionString(cs.String())
	require.NoError(t, err)
	assert.True(t, cs.Equal(again))
}

func TestConnectionString_IsReplicaSet(t *testing.T) {
	assert.True(t, ConnectionString{SetName: "rs0", Hosts: []string{"a:1"}}.IsReplicaSet())
	assert.False(t, ConnectionString{Hosts: []string{"a:1"}}.IsReplicaSet())
	assert.False(t, ConnectionString{SetName: "rs0"}.IsReplicaSet())
}

func TestConnectionString_Equal(t *testing.T) {
	base := ConnectionString{SetName: "rs0", Hosts: []string{"a:1", "b:2"}}

	assert.True(t, base.Equal(ConnectionString{SetName: "rs0", Hosts: []string{"a:1", "b:2"}}))
	assert.False(t, base.Equal(ConnectionString{SetName: "rs1", Hosts: []string{"a:1", "b:2"}}))
	assert.False(t, base.Equal(ConnectionString{SetName: "rs0", Hosts: []string{"a:1"}}))

	// Host order is significant.
	assert.False(t, base.Equal(ConnectionString{SetName: "rs0", Hosts: []string{"b:2", "a:1"}}))
}
