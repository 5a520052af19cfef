package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/cockroachdb/errors"
)

// NewJSONSerializer creates a new serializer using json encoding
// The message type is written by name (see common.MessageType)
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IRPCSerializer {
	return gobSerializerImpl{}
}

type jsonSerializerImpl struct{}

type gobSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	return data, errors.Wrap(err, "json: encode message")
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return errors.Wrap(json.Unmarshal(b, msg), "json: decode message")
}

func (gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, errors.Wrap(err, "gob: encode message")
	}
	return buf.Bytes(), nil
}

func (gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// gob leaves fields that were zero on the sender untouched
	*msg = common.Message{}
	return errors.Wrap(gob.NewDecoder(bytes.NewReader(b)).Decode(msg), "gob: decode message")
}
