package server

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Request metrics (exposed in the Prometheus text format)
// --------------------------------------------------------------------------

// observeRequest records the outcome and duration of a single request
func observeRequest(shardID uint64, op common.MessageType, code store.RetCode, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`tkv_requests_total{shard="%d",op=%q,code=%q}`, shardID, op, code)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`tkv_request_duration_seconds{op=%q}`, op)).UpdateDuration(start)
}

// servedShards counts the shards of all servers running in this process
var servedShards atomic.Int64

var _ = metrics.NewGauge(`tkv_shards`, func() float64 {
	return float64(servedShards.Load())
})

// observeShards adds delta to the number of shards served by this process
func observeShards(delta int) {
	servedShards.Add(int64(delta))
}
