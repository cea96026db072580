package fiberpool

import (
	fibercli "github.com/gofiber/fiber/v3/client"
)

type fiberResp struct {
	status      int
	body        []byte
	contentType string
}

// newFiberResp copies what it needs; r goes back to fiber's pool afterwards.
func newFiberResp(r *fibercli.Response) fiberResp {
	b := append([]byte(nil), r.Body()...)
	return fiberResp{
		status:      r.StatusCode(),
		body:        b,
		contentType: r.Header("Content-Type"),
	}
}

func (r fiberResp) StatusCode() int     { return r.status }
func (r fiberResp) Body() []byte        { return r.body }
func (r fiberResp) ContentType() string { return r.contentType }
