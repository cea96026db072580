package fiberpool

import (
	"context"
	"sync"
	"time"

	"settemplatesync/pkg/config"
	"settemplatesync/pkg/pool"
	"settemplatesync/pkg/rr"

	fibercli "github.com/gofiber/fiber/v3/client"
	"github.com/rs/zerolog/log"
)

const backend = config.BackendFiber

var _ pool.Client = (*ClientPool)(nil)

type ClientPool struct {
	clients   *rr.Ring[member]
	cfg       config.Config
	closeOnce sync.Once
}

func New(cfg config.Config) *ClientPool {
	if cfg.Size <= 0 {
		cfg.Size = config.DefaultConfig().Size
	}
	cs := make([]member, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		cs = append(cs, newMember(cfg))
	}
	return &ClientPool{clients: rr.New(cs), cfg: cfg}
}

// Post sends body through the next fiber client. []byte and json.RawMessage
// bodies go out raw as JSON unless rc sets a Content-Type, anything else is
// JSON-encoded.
func (p *ClientPool) Post(ctx context.Context, path string, body any, rc pool.RequestConfig) (pool.Response, error) {
	req := p.clients.Next().cli.R().SetContext(ctx)
	raw, isRaw := pool.RawBody(body)
	switch {
	case isRaw:
		req.SetRawBody(raw)
	case body != nil:
		req.SetJSON(body)
	}
	for k, vs := range rc.Header {
		for _, v := range vs {
			req.AddHeader(k, v)
		}
	}
	if isRaw && rc.Header.Get("Content-Type") == "" {
		req.SetHeader("Content-Type", pool.ContentTypeJSON)
	}
	for k, vs := range rc.Query {
		for _, v := range vs {
			req.AddParam(k, v)
		}
	}
	if rc.Timeout > 0 {
		req.SetTimeout(rc.Timeout)
	}

	started := time.Now()
	res, err := req.Post(path)
	if err != nil {
		fibercli.ReleaseRequest(req)
		pool.Observe(backend, 0, started)
		log.Debug().Err(err).Str("backend", backend).Str("path", path).Msg("post failed")
		return nil, err
	}
	// releases req as well
	defer res.Close()

	out := newFiberResp(res)
	pool.Observe(backend, out.StatusCode(), started)
	log.Debug().
		Str("backend", backend).
		Str("path", path).
		Int("status", out.StatusCode()).
		Dur("elapsed", time.Since(started)).
		Msg("post done")
	return out, nil
}

func (p *ClientPool) Close() {
	p.closeOnce.Do(func() {
		for _, c := range p.clients.All() {
			c.base.CloseIdleConnections()
		}
	})
}
