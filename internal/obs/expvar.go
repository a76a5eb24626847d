package obs

import (
	"expvar"
	"sync/atomic"
)

var (
	inflightAPIRequests int64
	totalAPIRequests    int64
	totalAPIErrors      int64
)

func init() {
	expvar.Publish("inflight_api_requests", expvar.Func(func() any {
		return atomic.LoadInt64(&inflightAPIRequests)
	}))
	expvar.Publish("total_api_requests", expvar.Func(func() any {
		return atomic.LoadInt64(&totalAPIRequests)
	}))
	expvar.Publish("total_api_errors", expvar.Func(func() any {
		return atomic.LoadInt64(&totalAPIErrors)
	}))
}

// TrackAPIRequest increments in-flight/total request counters and returns
// a function that should be deferred to decrement the in-flight counter.
func TrackAPIRequest() func() {
	atomic.AddInt64(&inflightAPIRequests, 1)
	atomic.AddInt64(&totalAPIRequests, 1)
	return func() {
		atomic.AddInt64(&inflightAPIRequests, -1)
	}
}

// RecordAPIError counts responses with a 5xx status.
func RecordAPIError() {
	atomic.AddInt64(&totalAPIErrors, 1)
}
