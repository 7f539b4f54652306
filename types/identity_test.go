package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIdentity() ShardIdentity {
	return ShardIdentity{
		ShardName: "shard01",
		ClusterID: "cluster-a",
		ConfigServer: ConnectionString{
			SetName: "configRS",
			Hosts:   []string{"cfg1:27019", "cfg2:27019"},
		},
	}
}

func TestShardIdentity_Validate(t *testing.T) {
	require.NoError(t, validIdentity().Validate())

	t.Run("empty shard name", func(t *testing.T) {
		si := validIdentity()
		si.ShardName = ""
		require.Error(t, si.Validate())
	})

	t.Run("missing cluster ID", func(t *testing.T) {
		si := validIdentity()
		si.ClusterID = ""
		require.Error(t, si.Validate())
	})

	t.Run("standalone config server", func(t *testing.T) {
		si := validIdentity()
		si.ConfigServer.SetName = ""
		err := si.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "replica set")
	})
}

func TestParseShardIdentity(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := []byte(`{
			"shardName": "shard01",
			"clusterId": "cluster-a",
			"configServer": {"setName": "configRS", "hosts": ["cfg1:27019", "cfg2:27019"]}
		}`)

		si, err := ParseShardIdentity(doc)
		require.NoError(t, err)
		assert.Equal(t, validIdentity(), si)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseShardIdentity([]byte(`{"shardName":`))
		require.Error(t, err)
	})

	t.Run("decodes but fails validation", func(t *testing.T) {
		_, err := ParseShardIdentity([]byte(`{"shardName": "shard01"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid shard identity")
	})
}

func TestShardIdentity_String(t *testing.T) {
	s := validIdentity().String()

	assert.Contains(t, s, "shard01")
	assert.Contains(t, s, "cluster-a")
	assert.Contains(t, s, "configRS/cfg1:27019,cfg2:27019")
}
