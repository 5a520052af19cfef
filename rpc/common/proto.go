package common

import (
	"encoding/json"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Family string `json:"family,omitempty"` // Used for: Put, Get, Delete, Scan
	Key    string `json:"key,omitempty"`    // Used for: Put, Get, Delete, Scan (start key)
	Value  string `json:"value,omitempty"`  // Used for: Put (request), Get and Delete (response)
	Limit  uint64 `json:"limit,omitempty"`  // Used for: Scan (request)

	// Response only fields
	Pairs []store.KVPair `json:"pairs,omitempty"` // Used for: Scan responses
	Code  store.RetCode  `json:"code,omitempty"`  // RetCSuccess if no error, otherwise the kind of error
	Err   string         `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Info responses (JSON encoded store.StoreInfo)
}

// AsError converts an error response back into a *store.Error.
// It returns nil if the message does not carry an error.
func (m *Message) AsError() error {
	if m.Err == "" && m.Code == store.RetCSuccess && m.MsgType != MsgTError {
		return nil
	}
	code := m.Code
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// withErr stores the error (if any) in the message
func (m *Message) withErr(err error) *Message {
	if err != nil {
		m.Code = store.CodeOf(err)
		m.Err = err.Error()
	}
	return m
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPutRequest creates a new Put request
func NewPutRequest(family, key, value string) *Message {
	return &Message{
		MsgType: MsgTKVPut,
		Family:  family,
		Key:     key,
		Value:   value,
	}
}

// NewPutResponse creates a new Put response
func NewPutResponse(err error) *Message {
	return (&Message{MsgType: MsgTKVPut}).withErr(err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(family, key string) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		Family:  family,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value string, err error) *Message {
	return (&Message{MsgType: MsgTKVGet, Value: value}).withErr(err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(family, key string) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		Family:  family,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response carrying the removed value
func NewDeleteResponse(removed string, err error) *Message {
	return (&Message{MsgType: MsgTKVDelete, Value: removed}).withErr(err)
}

// NewScanRequest creates a new Scan request
func NewScanRequest(family, startKey string, limit uint64) *Message {
	return &Message{
		MsgType: MsgTKVScan,
		Family:  family,
		Key:     startKey,
		Limit:   limit,
	}
}

// NewScanResponse creates a new Scan response
func NewScanResponse(pairs []store.KVPair, err error) *Message {
	return (&Message{MsgType: MsgTKVScan, Pairs: pairs}).withErr(err)
}

// NewInfoRequest creates a new Info request
func NewInfoRequest() *Message {
	return &Message{
		MsgType: MsgTKVInfo,
	}
}

// NewInfoResponse creates a new Info response
func NewInfoResponse(meta []byte, err error) *Message {
	return (&Message{MsgType: MsgTKVInfo, Meta: meta}).withErr(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(code store.RetCode, err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    code,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTKVPut:
		return "put"
	case MsgTKVGet:
		return "get"
	case MsgTKVDelete:
		return "delete"
	case MsgTKVScan:
		return "scan"
	case MsgTKVInfo:
		return "info"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "put":
		*t = MsgTKVPut
	case "get":
		*t = MsgTKVGet
	case "delete":
		*t = MsgTKVDelete
	case "scan":
		*t = MsgTKVScan
	case "info":
		*t = MsgTKVInfo
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	case "unknown":
		*t = MsgTUnknown
	default:
		return errors.Newf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVPut    // Put a key-value pair into a family
	MsgTKVGet    // Get a value by key
	MsgTKVDelete // Delete a key-value pair
	MsgTKVScan   // Ordered range scan
	MsgTKVInfo   // Store metadata
)
