package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey carries the per-request id set by the HTTP middleware so
// repository and provider timings can be correlated with access logs.
const RequestIDKey ctxKey = "req_id"

// Time returns a deferred closure that logs the duration of the named
// operation, tagging the line with the request id and any error set by
// the caller.
//
//	defer obs.Time(ctx, "optimizeRoute")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		elapsed := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, elapsed.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, elapsed.Milliseconds())
	}
}
