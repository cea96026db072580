package fiberpool

import (
	"crypto/tls"
	"net"
	"strings"

	"settemplatesync/pkg/config"

	fibercli "github.com/gofiber/fiber/v3/client"
	"github.com/valyala/fasthttp"
)

func newFiberBase(cfg config.Config) *fasthttp.Client {
	return &fasthttp.Client{
		Dial:                func(addr string) (net.Conn, error) { return fasthttp.DialTimeout(addr, cfg.DialTimeout) },
		TLSConfig:           &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		ReadTimeout:         cfg.RequestTimeout,
		WriteTimeout:        cfg.RequestTimeout,
		MaxIdleConnDuration: cfg.IdleConnTimeout,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		MaxConnWaitTimeout:  cfg.RequestTimeout,
	}
}

// member keeps the fasthttp client next to its fiber wrapper so Close can
// drop idle connections.
type member struct {
	cli  *fibercli.Client
	base *fasthttp.Client
}

func newMember(cfg config.Config) member {
	base := newFiberBase(cfg)
	return member{
		cli:  fibercli.NewWithClient(base).SetTimeout(cfg.RequestTimeout).SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		base: base,
	}
}
