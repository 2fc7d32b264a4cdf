package letterboxd

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id    uint64
	start time.Time
}

type instrumentation struct {
	logger    zerolog.Logger
	idcounter *atomic.Uint64
}

// instrument logs every request and its outcome at debug level, and
// transport failures at warn.
func instrument(client *resty.Client, logger zerolog.Logger) {
	i := instrumentation{logger: logger, idcounter: new(atomic.Uint64)}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

func (i instrumentation) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := i.idcounter.Add(1)
	req.SetContext(context.WithValue(req.Context(), reqCtxKey, reqCtx{id: id, start: time.Now()}))
	i.logger.Debug().Uint64("request_id", id).Str("method", req.Method).Str("url", req.URL).Msg("letterboxd request")
	return nil
}

func (i instrumentation) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	rc, _ := res.Request.Context().Value(reqCtxKey).(reqCtx)
	i.logger.Debug().
		Uint64("request_id", rc.id).
		Int("status", res.StatusCode()).
		Dur("duration", time.Since(rc.start)).
		Msg("letterboxd response")
	return nil
}

func (i instrumentation) onError(req *resty.Request, err error) {
	rc, _ := req.Context().Value(reqCtxKey).(reqCtx)
	i.logger.Warn().
		Err(err).
		Uint64("request_id", rc.id).
		Str("url", req.URL).
		Dur("duration", time.Since(rc.start)).
		Msg("letterboxd request failed")
}
