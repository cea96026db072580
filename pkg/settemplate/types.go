package settemplate

import (
	"encoding/json"
	"errors"
	"fmt"

	"settemplatesync/pkg/pool"
)

// DiffType says how a module under a set differs from the set template.
type DiffType string

const (
	ModuleDiffAdd       DiffType = "add"
	ModuleDiffRemove    DiffType = "remove"
	ModuleDiffChanged   DiffType = "changed"
	ModuleDiffUnchanged DiffType = "unchanged"
)

// DiffOption is the diff request body. An empty SetIDs lets the server pick
// every set created from the template.
type DiffOption struct {
	SetIDs []int64 `json:"bk_set_ids"`
}

type SyncOption struct {
	SetIDs []int64 `json:"bk_set_ids"`
}

// Envelope is the common CMDB response wrapper.
type Envelope struct {
	Result  bool            `json:"result"`
	Code    int             `json:"bk_error_code"`
	Message string          `json:"bk_error_msg"`
	Data    json.RawMessage `json:"data"`
}

type SetModuleDiff struct {
	ModuleID            int64    `json:"bk_module_id"`
	ModuleName          string   `json:"bk_module_name"`
	ServiceTemplateID   int64    `json:"service_template_id"`
	ServiceTemplateName string   `json:"service_template_name"`
	DiffType            DiffType `json:"diff_type"`
}

type SetDiff struct {
	SetID         int64           `json:"bk_set_id"`
	SetTemplateID int64           `json:"set_template_id"`
	NeedSync      bool            `json:"need_sync"`
	ModuleDiffs   []SetModuleDiff `json:"module_diffs"`
}

// Changes returns the module diffs that are not DiffUnchanged.
func (d SetDiff) Changes() []SetModuleDiff {
	var out []SetModuleDiff
	for _, m := range d.ModuleDiffs {
		if m.DiffType != ModuleDiffUnchanged {
			out = append(out, m)
		}
	}
	return out
}

// NeedsSync returns the ids of sets that differ from their template, either
// flagged by the server or carrying a changed module.
func NeedsSync(diffs []SetDiff) []int64 {
	var ids []int64
	for _, d := range diffs {
		if d.NeedSync || len(d.Changes()) > 0 {
			ids = append(ids, d.SetID)
		}
	}
	return ids
}

// APIError is a failed CMDB envelope.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cmdb error %d (http %d): %s", e.Code, e.Status, e.Message)
}

var ErrEmptyBody = errors.New("empty response body")

// DecodeEnvelope parses resp as a CMDB envelope. A result=false or non-zero
// bk_error_code comes back as *APIError along with the parsed envelope.
func DecodeEnvelope(resp pool.Response) (*Envelope, error) {
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("http %d: %w", resp.StatusCode(), ErrEmptyBody)
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope (http %d): %w", resp.StatusCode(), err)
	}
	if !env.Result || env.Code != 0 {
		return &env, &APIError{Status: resp.StatusCode(), Code: env.Code, Message: env.Message}
	}
	return &env, nil
}

// DecodeSetDiffs reads the set diffs out of a diff_with_instances response.
func DecodeSetDiffs(resp pool.Response) ([]SetDiff, error) {
	env, err := DecodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var diffs []SetDiff
	if err := json.Unmarshal(env.Data, &diffs); err != nil {
		return nil, fmt.Errorf("decode set diffs: %w", err)
	}
	return diffs, nil
}
