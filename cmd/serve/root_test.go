package serve

import (
	"testing"

	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShards(t *testing.T) {
	testCases := []struct {
		in      string
		ids     []uint64
		wantErr bool
	}{
		{"100", []uint64{100}, false},
		{"1, 2,3", []uint64{1, 2, 3}, false},
		{"7=lstore,8", []uint64{7, 8}, false},
		{"1,", []uint64{1}, false},
		{"", nil, true},
		{"abc", nil, true},
		{"1=memory", nil, true},
		{"1,1", nil, true},
	}

	for _, tc := range testCases {
		shards, err := parseShards(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)

		var ids []uint64
		for _, s := range shards {
			ids = append(ids, s.ShardID)
			assert.Equal(t, common.ShardTypeLocalIStore, s.Type)
		}
		assert.Equal(t, tc.ids, ids, tc.in)
	}
}
