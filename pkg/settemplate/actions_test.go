package settemplate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settemplatesync/pkg/config"
	"settemplatesync/pkg/fiberpool"
	"settemplatesync/pkg/pool"
	"settemplatesync/pkg/restypool"
)

type call struct {
	path string
	body any
	cfg  pool.RequestConfig
}

type fakeClient struct {
	mu    sync.Mutex
	calls []call
	resp  pool.Response
	err   error
}

func (f *fakeClient) Post(_ context.Context, path string, body any, cfg pool.RequestConfig) (pool.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{path: path, body: body, cfg: cfg})
	return f.resp, f.err
}

func (f *fakeClient) Close() {}

type stubResp struct {
	status int
	body   string
}

func (r stubResp) StatusCode() int     { return r.status }
func (r stubResp) Body() []byte        { return []byte(r.body) }
func (r stubResp) ContentType() string { return "application/json" }

func TestPaths(t *testing.T) {
	assert.Equal(t, "/findmany/topo/set_template/7/bk_biz_id/3/diff_with_instances", DiffPath(3, 7))
	assert.Equal(t, "/updatemany/topo/set_template/7/sync_to_instances/bk_biz_id/3", SyncPath(3, 7))
	assert.Equal(t, "/findmany/topo/set_template/-1/bk_biz_id/9223372036854775807/diff_with_instances", DiffPath(9223372036854775807, -1))
}

func TestActions_PassThrough(t *testing.T) {
	want := stubResp{status: 200, body: `{"result":true}`}
	params := map[string]any{"bk_set_ids": []int64{1, 2}}
	cfg := pool.RequestConfig{
		Header:  http.Header{"X-Trace": {"abc"}},
		Query:   url.Values{"page": {"1"}},
		Timeout: time.Second,
	}

	tests := []struct {
		name string
		run  func(a *Actions) (pool.Response, error)
		path string
	}{
		{
			name: "diff",
			run: func(a *Actions) (pool.Response, error) {
				return a.DiffTemplateAndInstances(context.Background(), 2, 11, params, cfg)
			},
			path: "/findmany/topo/set_template/11/bk_biz_id/2/diff_with_instances",
		},
		{
			name: "sync",
			run: func(a *Actions) (pool.Response, error) {
				return a.SyncTemplateToInstances(context.Background(), 2, 11, params, cfg)
			},
			path: "/updatemany/topo/set_template/11/sync_to_instances/bk_biz_id/2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeClient{resp: want}
			got, err := tc.run(New(fc))
			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.Len(t, fc.calls, 1)
			assert.Equal(t, tc.path, fc.calls[0].path)
			assert.Equal(t, params, fc.calls[0].body)
			assert.Equal(t, cfg, fc.calls[0].cfg)
		})
	}
}

func TestActions_ErrorUnchanged(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	fc := &fakeClient{err: boom}
	a := New(fc)

	resp, err := a.DiffTemplateAndInstances(context.Background(), 1, 1, nil, pool.RequestConfig{})
	assert.Nil(t, resp)
	assert.Same(t, boom, err)

	resp, err = a.SyncTemplateToInstances(context.Background(), 1, 1, nil, pool.RequestConfig{})
	assert.Nil(t, resp)
	assert.Same(t, boom, err)

	assert.Len(t, fc.calls, 2)
}

func TestActions_NonOKStatusIsNotAnError(t *testing.T) {
	fc := &fakeClient{resp: stubResp{status: 500, body: "oops"}}

	resp, err := New(fc).SyncTemplateToInstances(context.Background(), 1, 1, nil, pool.RequestConfig{})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode())
	assert.Equal(t, "oops", string(resp.Body()))
}

type seen struct {
	method string
	path   string
	query  string
	header string
	body   map[string]any
}

func newRecordingServer(t *testing.T) (*httptest.Server, func() []seen) {
	t.Helper()
	var mu sync.Mutex
	var got []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(raw, &m)
		mu.Lock()
		got = append(got, seen{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Get("X-Trace"),
			body:   m,
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":true,"bk_error_code":0,"bk_error_msg":"success","data":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []seen {
		mu.Lock()
		defer mu.Unlock()
		return append([]seen(nil), got...)
	}
}

func TestActions_OverPools(t *testing.T) {
	pools := map[string]func(config.Config) pool.Client{
		"resty": func(c config.Config) pool.Client { return restypool.New(c) },
		"fiber": func(c config.Config) pool.Client { return fiberpool.New(c) },
	}

	for name, mk := range pools {
		t.Run(name, func(t *testing.T) {
			srv, requests := newRecordingServer(t)

			cfg := config.DefaultConfig()
			cfg.BaseURL = srv.URL + "/api/v3/"
			cfg.Size = 2
			cl := mk(cfg)
			defer cl.Close()

			a := New(cl)
			rc := pool.RequestConfig{
				Header: http.Header{"X-Trace": {"t-1"}},
				Query:  url.Values{"dry": {"1"}},
			}
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			resp, err := a.DiffTemplateAndInstances(ctx, 2, 5, DiffOption{SetIDs: []int64{10}}, rc)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode())
			assert.Contains(t, resp.ContentType(), "application/json")

			resp, err = a.SyncTemplateToInstances(ctx, 2, 5, SyncOption{SetIDs: []int64{10, 11}}, rc)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode())

			got := requests()
			require.Len(t, got, 2)

			assert.Equal(t, http.MethodPost, got[0].method)
			assert.Equal(t, "/api/v3/findmany/topo/set_template/5/bk_biz_id/2/diff_with_instances", got[0].path)
			assert.Equal(t, "dry=1", got[0].query)
			assert.Equal(t, "t-1", got[0].header)
			assert.Equal(t, []any{float64(10)}, got[0].body["bk_set_ids"])

			assert.Equal(t, http.MethodPost, got[1].method)
			assert.Equal(t, "/api/v3/updatemany/topo/set_template/5/sync_to_instances/bk_biz_id/2", got[1].path)
			assert.Equal(t, []any{float64(10), float64(11)}, got[1].body["bk_set_ids"])
		})
	}
}
