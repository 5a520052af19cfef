package serializer

import (
	"encoding/binary"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/cockroachdb/errors"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasFamily byte = 1 << 0
	hasKey    byte = 1 << 1
	hasValue  byte = 1 << 2
	hasLimit  byte = 1 << 3
	hasPairs  byte = 1 << 4
	hasCode   byte = 1 << 5
	hasErr    byte = 1 << 6
	hasMeta   byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	if msg.Family != "" {
		flags |= hasFamily
		pos = putString(result, pos, msg.Family)
	}

	if msg.Key != "" {
		flags |= hasKey
		pos = putString(result, pos, msg.Key)
	}

	if msg.Value != "" {
		flags |= hasValue
		pos = putString(result, pos, msg.Value)
	}

	if msg.Limit > 0 {
		flags |= hasLimit
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Limit)
		pos += 8
	}

	// Pairs: count followed by length-prefixed key and value of every pair
	if len(msg.Pairs) > 0 {
		flags |= hasPairs
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Pairs)))
		pos += 4
		for _, p := range msg.Pairs {
			pos = putString(result, pos, p.Key)
			pos = putString(result, pos, p.Value)
		}
	}

	if msg.Code != store.RetCSuccess {
		flags |= hasCode
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(msg.Code))
		pos += 8
	}

	if msg.Err != "" {
		flags |= hasErr
		pos = putString(result, pos, msg.Err)
	}

	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		copy(result[pos:pos+metaLen], msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return errors.New("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]

	// Initialize read position
	pos := 2
	var err error

	msg.Family, msg.Key, msg.Value = "", "", ""
	msg.Limit, msg.Code, msg.Err = 0, store.RetCSuccess, ""
	msg.Pairs = nil

	if flags&hasFamily != 0 {
		if msg.Family, pos, err = readString(data, pos, "family"); err != nil {
			return err
		}
	}

	if flags&hasKey != 0 {
		if msg.Key, pos, err = readString(data, pos, "key"); err != nil {
			return err
		}
	}

	if flags&hasValue != 0 {
		if msg.Value, pos, err = readString(data, pos, "value"); err != nil {
			return err
		}
	}

	if flags&hasLimit != 0 {
		if pos+8 > len(data) {
			return errors.New("data too short for limit")
		}
		msg.Limit = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	if flags&hasPairs != 0 {
		if pos+4 > len(data) {
			return errors.New("data too short for pair count")
		}
		count := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		// every pair needs at least 8 bytes, reject counts that cannot fit
		if count > (len(data)-pos)/8 {
			return errors.Newf("data too short for %d pairs", count)
		}

		msg.Pairs = make([]store.KVPair, count)
		for i := range msg.Pairs {
			if msg.Pairs[i].Key, pos, err = readString(data, pos, "pair key"); err != nil {
				return err
			}
			if msg.Pairs[i].Value, pos, err = readString(data, pos, "pair value"); err != nil {
				return err
			}
		}
	}

	if flags&hasCode != 0 {
		if pos+8 > len(data) {
			return errors.New("data too short for code")
		}
		msg.Code = store.RetCode(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	}

	if flags&hasErr != 0 {
		if msg.Err, pos, err = readString(data, pos, "error"); err != nil {
			return err
		}
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if pos+4 > len(data) {
			return errors.New("data too short for meta length")
		}

		// Read meta length
		metaLen := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		if pos+int(metaLen) > len(data) {
			return errors.New("data too short for meta data")
		}

		// Read metadata - create an empty slice (not nil) if length is 0
		// Allocate only if needed
		if msg.Meta == nil || cap(msg.Meta) < int(metaLen) {
			msg.Meta = make([]byte, metaLen)
		} else {
			msg.Meta = msg.Meta[:metaLen]
		}
		copy(msg.Meta, data[pos:pos+int(metaLen)])
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	// Add sizes for fields that require length encoding (4 bytes for length + data)
	if msg.Family != "" {
		size += 4 + len(msg.Family)
	}
	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.Value != "" {
		size += 4 + len(msg.Value)
	}
	if msg.Limit > 0 {
		size += 8 // uint64
	}
	if len(msg.Pairs) > 0 {
		size += 4 // pair count
		for _, p := range msg.Pairs {
			size += 8 + len(p.Key) + len(p.Value)
		}
	}
	if msg.Code != store.RetCSuccess {
		size += 8 // uint64
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

// putString writes a length-prefixed string at pos and returns the new position
func putString(buf []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	copy(buf[pos:pos+len(s)], s)
	return pos + len(s)
}

// readString reads a length-prefixed string at pos and returns it with the new position
func readString(data []byte, pos int, field string) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, errors.Newf("data too short for %s length", field)
	}
	l := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if l > len(data)-pos {
		return "", pos, errors.Newf("data too short for %s data", field)
	}
	return string(data[pos : pos+l]), pos + l, nil
}
