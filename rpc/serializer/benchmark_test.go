package serializer

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
)

// benchmarkMessages are the messages a client and server exchange in practice
func benchmarkMessages() map[string]common.Message {
	return map[string]common.Message{
		"Ack":         *common.NewPutResponse(nil),
		"GetRequest":  *common.NewGetRequest("users", "user:000042"),
		"GetResponse": *common.NewGetResponse("medium length value for testing serialization", nil),
		"Put1KB":      *common.NewPutRequest("users", "user:000042", strings.Repeat("x", 1024)),
		"Put16KB":     *common.NewPutRequest("users", "user:000042", strings.Repeat("x", 16*1024)),
		"ScanRequest": *common.NewScanRequest("users", "user:", 100),
		"Scan10":      *common.NewScanResponse(benchmarkPairs(10), nil),
		"Scan1000":    *common.NewScanResponse(benchmarkPairs(1000), nil),
		"NotFound":    *common.NewGetResponse("", store.NewErrorf(store.RetCKeyNotFound, "key %q not found in family %q", "user:000042", "users")),
	}
}

// benchmarkPairs returns n pairs with short keys and values
func benchmarkPairs(n int) []store.KVPair {
	pairs := make([]store.KVPair, n)
	for i := range pairs {
		pairs[i] = store.KVPair{Key: strings.Repeat("k", i%16+1), Value: strings.Repeat("v", i%64+1)}
	}
	return pairs
}

// BenchmarkSerializers measures encoding and decoding of every message with every serializer.
// The encoded size is reported as the custom metric "wire-bytes".
func BenchmarkSerializers(b *testing.B) {
	for name, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range benchmarkMessages() {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("%s: failed to serialize %s: %v", name, msgName, err)
			}

			b.Run(name+"/"+msgName+"/encode", func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := serializer.Serialize(msg); err != nil {
						b.Fatal(err)
					}
				}
				b.ReportMetric(float64(len(data)), "wire-bytes")
			})

			b.Run(name+"/"+msgName+"/decode", func(b *testing.B) {
				b.SetBytes(int64(len(data)))
				b.ReportAllocs()
				var out common.Message
				for i := 0; i < b.N; i++ {
					if err := serializer.Deserialize(data, &out); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
