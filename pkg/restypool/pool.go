package restypool

import (
	"context"
	"sync"
	"time"

	"settemplatesync/pkg/config"
	"settemplatesync/pkg/pool"
	"settemplatesync/pkg/rr"

	"github.com/rs/zerolog/log"
	resty "resty.dev/v3"
)

const backend = config.BackendResty

var _ pool.Client = (*ClientPool)(nil)

type ClientPool struct {
	clients   *rr.Ring[*resty.Client]
	cfg       config.Config
	closeOnce sync.Once
}

func New(cfg config.Config) *ClientPool {
	if cfg.Size <= 0 {
		cfg.Size = config.DefaultConfig().Size
	}

	cs := make([]*resty.Client, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		cs = append(cs, newRestyClient(cfg))
	}
	return &ClientPool{clients: rr.New(cs), cfg: cfg}
}

func (p *ClientPool) Post(ctx context.Context, path string, body any, rc pool.RequestConfig) (pool.Response, error) {
	ctx, cancel := rc.WithTimeout(ctx)
	defer cancel()

	req := p.clients.Next().R().SetContext(ctx)
	raw, isRaw := pool.RawBody(body)
	if isRaw {
		req.SetBody(raw)
	} else {
		req.SetBody(body)
	}
	for k, vs := range rc.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if isRaw && req.Header.Get("Content-Type") == "" {
		req.SetHeader("Content-Type", pool.ContentTypeJSON)
	}
	if len(rc.Query) > 0 {
		req.SetQueryParamsFromValues(rc.Query)
	}

	started := time.Now()
	res, err := req.Post(path)
	if err != nil {
		pool.Observe(backend, 0, started)
		log.Debug().Err(err).Str("backend", backend).Str("path", path).Msg("post failed")
		return nil, err
	}

	out := newRestyResp(res)
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
			_ = c.Close()
		}
	})
}
