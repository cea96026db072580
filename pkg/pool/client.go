package pool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

type Client interface {
	Post(ctx context.Context, path string, body any, cfg RequestConfig) (Response, error)
	Close()
}

type Response interface {
	StatusCode() int
	Body() []byte
	ContentType() string
}

// RequestConfig is the per-call request configuration. Implementations apply
// it as given.
type RequestConfig struct {
	Header  http.Header
	Query   url.Values
	Timeout time.Duration
}

// WithTimeout derives the call context for cfg.Timeout. A zero timeout keeps
// ctx as is.
func (c RequestConfig) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.Timeout)
}

const ContentTypeJSON = "application/json"

// RawBody reports whether body is already-encoded JSON that must go out
// byte for byte.
func RawBody(body any) ([]byte, bool) {
	switch b := body.(type) {
	case []byte:
		return b, true
	case json.RawMessage:
		return b, true
	}
	return nil, false
}
