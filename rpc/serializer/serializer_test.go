package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Put request
		*common.NewPutRequest("users", "test-key", "test-value"),

		// Scan request
		*common.NewScanRequest("users", "a", 10),

		// Scan response
		*common.NewScanResponse([]store.KVPair{{Key: "a", Value: "1"}, {Key: "b", Value: "22"}}, nil),

		// Error response
		*common.NewGetResponse("", store.NewError(store.RetCKeyNotFound, "key not found")),

		// Message with all fields filled
		{
			MsgType: common.MsgTKVInfo,
			Family:  "family",
			Key:     "key",
			Value:   "value",
			Limit:   1 << 40,
			Pairs:   []store.KVPair{{Key: "k", Value: "v"}},
			Code:    store.RetCInvalidArgument,
			Err:     "limit too large for this architecture",
			Meta:    []byte(`{"family_count":1}`),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestErrorCodeSurvives tests that the typed error can be rebuilt on the receiving side
func TestErrorCodeSurvives(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(*common.NewDeleteResponse("", store.NewError(store.RetCFamilyNotFound, "family \"x\" not found")))
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !store.IsCode(result.AsError(), store.RetCFamilyNotFound) {
				t.Errorf("Expected FamilyNotFound after round trip, got %v", result.AsError())
			}
		})
	}
}

// TestReusedMessageIsReset tests that decoding into a used message leaves no stale fields
func TestReusedMessageIsReset(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			full, err := serializer.Serialize(*common.NewScanResponse([]store.KVPair{{Key: "a", Value: "1"}}, nil))
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			empty, err := serializer.Serialize(common.Message{MsgType: common.MsgTSuccess})
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var msg common.Message
			if err := serializer.Deserialize(full, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if err := serializer.Deserialize(empty, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(common.Message{MsgType: common.MsgTSuccess}, msg) {
				t.Errorf("Expected reset message, got %+v", msg)
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	// Test cases for empty or zero values
	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Put with empty family, key and value",
			msg:  *common.NewPutRequest("", "", ""),
		},
		{
			name: "Pair with empty key and value",
			msg: common.Message{
				MsgType: common.MsgTKVScan,
				Pairs:   []store.KVPair{{}, {Key: "k"}},
			},
		},
		{
			name: "Message with empty meta slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTKVInfo,
				Meta:    []byte{},
			},
		},
		{
			name: "Binary data in key and value",
			msg:  *common.NewPutRequest("f", "\x00\xff", "\x00\x01\x02"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Serialize
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// Deserialize
			var result common.Message
			err = serializer.Deserialize(data, &result)
			if err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(tc.msg, result) {
				t.Errorf("Mismatch after round trip:\nOriginal: %+v\nResult: %+v", tc.msg, result)
			}
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, hasKey, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid length for value",
			data:        []byte{1, hasValue, 0, 0, 0, 10}, // Claims value length 10 but no bytes provided
			expectError: true,
		},
		{
			name:        "Truncated limit",
			data:        []byte{1, hasLimit, 0, 0, 0},
			expectError: true,
		},
		{
			name:        "Pair count larger than payload",
			data:        []byte{1, hasPairs, 0xff, 0xff, 0xff, 0xff},
			expectError: true,
		},
		{
			name:        "Huge string length",
			data:        []byte{1, hasFamily, 0xff, 0xff, 0xff, 0xff, 'a'},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
