package server

import (
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
)

// IRPCServerAdapter translates one decoded request into calls on the store of a shard.
// Failures are reported inside the returned message (Code and Err), never as a nil response.
type IRPCServerAdapter interface {
	Handle(req *common.Message, s store.IStore) (resp *common.Message)
}
