// Package settemplate dispatches the set template diff and sync calls of the
// CMDB topology API.
//
// Actions are pass-through: the payload and request config reach the HTTP
// client untouched, and whatever the client returns (response or error) goes
// back to the caller as is.
package settemplate

import (
	"context"
	"strconv"

	"settemplatesync/pkg/pool"
)

type Actions struct {
	client pool.Client
}

func New(client pool.Client) *Actions {
	return &Actions{client: client}
}

// DiffPath is the endpoint comparing a set template with its set instances.
func DiffPath(bizID, setTemplateID int64) string {
	return "/findmany/topo/set_template/" + id(setTemplateID) + "/bk_biz_id/" + id(bizID) + "/diff_with_instances"
}

// SyncPath is the endpoint pushing a set template onto its set instances.
func SyncPath(bizID, setTemplateID int64) string {
	return "/updatemany/topo/set_template/" + id(setTemplateID) + "/sync_to_instances/bk_biz_id/" + id(bizID)
}

func (a *Actions) DiffTemplateAndInstances(ctx context.Context, bizID, setTemplateID int64, params any, cfg pool.RequestConfig) (pool.Response, error) {
	return a.client.Post(ctx, DiffPath(bizID, setTemplateID), params, cfg)
}

func (a *Actions) SyncTemplateToInstances(ctx context.Context, bizID, setTemplateID int64, params any, cfg pool.RequestConfig) (pool.Response, error) {
	return a.client.Post(ctx, SyncPath(bizID, setTemplateID), params, cfg)
}

func id(v int64) string { return strconv.FormatInt(v, 10) }
