package common

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageTypeJSON(t *testing.T) {
	for _, mt := range []MessageType{MsgTUnknown, MsgTSuccess, MsgTError, MsgTKVPut, MsgTKVGet, MsgTKVDelete, MsgTKVScan, MsgTKVInfo} {
		data, err := json.Marshal(mt)
		require.NoError(t, err)
		assert.Equal(t, `"`+mt.String()+`"`, string(data))

		var decoded MessageType
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, mt, decoded)
	}

	var mt MessageType
	assert.Error(t, json.Unmarshal([]byte(`"setE"`), &mt))
}

func TestResponseErrors(t *testing.T) {
	ok := NewGetResponse("v", nil)
	assert.NoError(t, ok.AsError())
	assert.Equal(t, store.RetCSuccess, ok.Code)

	notFound := NewGetResponse("", store.NewError(store.RetCKeyNotFound, "missing"))
	err := notFound.AsError()
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	assert.Contains(t, err.Error(), "missing")

	// error responses without a code are internal errors
	err = NewErrorResponse(store.RetCSuccess, "shard not found").AsError()
	assert.True(t, store.IsCode(err, store.RetCInternalError), "got %v", err)
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		in       string
		expected logger.LogLevel
		wantErr  bool
	}{
		{"debug", logger.DEBUG, false},
		{"INFO", logger.INFO, false},
		{"warn", logger.WARNING, false},
		{"warning", logger.WARNING, false},
		{"error", logger.ERROR, false},
		{"", logger.INFO, false},
		{"verbose", logger.INFO, true},
	}

	for _, tc := range testCases {
		level, err := ParseLogLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.expected, level, tc.in)
	}
}

func TestInitLoggersRepeated(t *testing.T) {
	require.NoError(t, InitLoggers("debug"))
	require.NotPanics(t, func() {
		require.NoError(t, InitLoggers("error"))
	})
	assert.Error(t, InitLoggers("verbose"))
}

func TestLoggerLevelConcurrent(t *testing.T) {
	l := CreateLogger("test").(*tkvLogger)
	l.logger.SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.SetLevel(logger.DEBUG)
				l.SetLevel(logger.ERROR)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Debugf("message %d", j)
			}
		}()
	}
	wg.Wait()

	l.SetLevel(logger.WARNING)
	assert.True(t, l.enabled(logger.ERROR))
	assert.False(t, l.enabled(logger.INFO))
}

func TestConfigString(t *testing.T) {
	sc := ServerConfig{
		Shards:        []ServerShard{{ShardID: 100, Type: ShardTypeLocalIStore}},
		TimeoutSecond: 5,
		Transport:     ServerTransportConfig{Endpoint: ":8080", WorkersPerConn: 4},
		LogLevel:      "info",
	}
	out := sc.String()
	assert.Contains(t, out, ":8080")
	assert.Contains(t, out, "local store")
	assert.Contains(t, out, "disabled")

	cc := ClientConfig{Transport: ClientTransportConfig{Endpoints: []string{"a:1", "b:2"}}}
	out = cc.String()
	assert.True(t, strings.Contains(out, "a:1") && strings.Contains(out, "b:2"))
}
