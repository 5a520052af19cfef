// Package serializer converts RPC messages (common.Message) to bytes and back.
// Client and server must use the same serializer.
//
// Implementations:
//
//   - Binary (NewBinarySerializer): the default and fastest format. A header holds
//     the message type and a flag byte naming the fields that follow, so empty fields
//     cost nothing. Strings are written with a big-endian uint32 length prefix, scan
//     results as a pair count followed by the length-prefixed key and value of every pair.
//
//   - JSON (NewJSONSerializer): human-readable, handy for debugging with curl against
//     the http transport. Message types are encoded by name.
//
//   - GOB (NewGOBSerializer): Go's gob format. It works out of the box but is the slowest
//     option and produces the largest payloads (see benchmark_test.go).
//
// All serializers are stateless and safe for concurrent use. Deserialize resets the
// target message before decoding into it.
//
// Usage:
//
//	s := serializer.NewBinarySerializer()
//	data, err := s.Serialize(*common.NewGetRequest("users", "alice"))
//	// ... send data ...
//	var resp common.Message
//	err = s.Deserialize(respData, &resp)
package serializer
