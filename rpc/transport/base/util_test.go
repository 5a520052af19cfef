package base

import (
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
		buf     []byte
	}{
		{"empty payload", []byte{}, nil},
		{"small payload without buffer", []byte("hello"), nil},
		{"payload fits buffer", []byte("hello"), make([]byte, 64)},
		{"payload larger than buffer", make([]byte, 1024), make([]byte, 32)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, server := net.Pipe()
			defer client.Close()
			defer server.Close()

			go func() {
				_ = writeFrame(client, 7, 42, tc.payload)
			}()

			shardID, requestID, data, err := readFrame(server, tc.buf)
			require.NoError(t, err)
			assert.Equal(t, uint64(7), shardID)
			assert.Equal(t, uint64(42), requestID)
			assert.Equal(t, tc.payload, data)
		})
	}
}

func TestReadFrameErrors(t *testing.T) {
	t.Run("closed connection", func(t *testing.T) {
		client, server := net.Pipe()
		_ = client.Close()
		defer server.Close()

		_, _, _, err := readFrame(server, nil)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("oversized frame", func(t *testing.T) {
		client, server := net.Pipe()
		defer client.Close()
		defer server.Close()

		go func() {
			header := make([]byte, headerSize)
			binary.BigEndian.PutUint32(header[16:20], MaxFrameSize+1)
			_, _ = client.Write(header)
		}()

		_, _, _, err := readFrame(server, nil)
		assert.Error(t, err)
	})
}
