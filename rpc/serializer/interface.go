package serializer

import "github.com/ValentinKolb/tinyKV/rpc/common"

// IRPCSerializer converts Messages to bytes and back.
// Deserialize overwrites every field of msg, so a Message may be reused between calls.
type IRPCSerializer interface {
	Serialize(msg common.Message) ([]byte, error)
	Deserialize(b []byte, msg *common.Message) error
}
