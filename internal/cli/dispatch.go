package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"settemplatesync/pkg/pool"
	"settemplatesync/pkg/settemplate"
)

const (
	headerUser      = "BK_User"
	headerSupplier  = "HTTP_BLUEKING_SUPPLIER_ID"
	headerRequestID = "Cc_Request_Id"
)

type dispatchFlags struct {
	bizID         int64
	setTemplateID int64
	setIDs        []int64
	data          string
	headers       []string
	summary       bool
}

func (f *dispatchFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64Var(&f.bizID, "biz-id", 0, "business id")
	fs.Int64Var(&f.setTemplateID, "set-template-id", 0, "set template id")
	fs.Int64SliceVar(&f.setIDs, "set-id", nil, "set instance id (repeatable)")
	fs.StringVar(&f.data, "data", "", "raw JSON body, or @file to read it from a file")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "extra request header k=v (repeatable)")
	_ = cmd.MarkFlagRequired("biz-id")
	_ = cmd.MarkFlagRequired("set-template-id")
}

func diffCmd(a *app) *cobra.Command {
	var f dispatchFlags
	c := &cobra.Command{
		Use:   "diff",
		Short: "Compare a set template with the sets created from it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			defer a.close()

			body, err := f.body(settemplate.DiffOption{SetIDs: nonNil(f.setIDs)})
			if err != nil {
				return err
			}
			rc, err := a.requestConfig(f.headers)
			if err != nil {
				return err
			}
			resp, err := a.actions.DiffTemplateAndInstances(cmd.Context(), f.bizID, f.setTemplateID, body, rc)
			if err != nil {
				return fmt.Errorf("diff set template %d: %w", f.setTemplateID, err)
			}
			if f.summary {
				return printSummary(a.out, resp)
			}
			return printResponse(a.out, resp)
		},
	}
	f.bind(c)
	c.Flags().BoolVar(&f.summary, "summary", false, "decode the diff and list the sets that need a sync")
	return c
}

func syncCmd(a *app) *cobra.Command {
	var f dispatchFlags
	c := &cobra.Command{
		Use:   "sync",
		Short: "Push a set template onto the sets created from it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			defer a.close()

			body, err := f.body(settemplate.SyncOption{SetIDs: nonNil(f.setIDs)})
			if err != nil {
				return err
			}
			rc, err := a.requestConfig(f.headers)
			if err != nil {
				return err
			}
			resp, err := a.actions.SyncTemplateToInstances(cmd.Context(), f.bizID, f.setTemplateID, body, rc)
			if err != nil {
				return fmt.Errorf("sync set template %d: %w", f.setTemplateID, err)
			}
			return printResponse(a.out, resp)
		},
	}
	f.bind(c)
	return c
}

// body returns --data as raw JSON when given, otherwise def.
func (f *dispatchFlags) body(def any) (any, error) {
	if f.data == "" {
		return def, nil
	}
	raw := []byte(f.data)
	if path, ok := strings.CutPrefix(f.data, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read --data file: %w", err)
		}
		raw = b
	}
	if !json.Valid(raw) {
		return nil, errors.New("--data is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// requestConfig stamps the CMDB caller headers. A request id passed with -H
// wins over the generated one.
func (a *app) requestConfig(extra []string) (pool.RequestConfig, error) {
	h := http.Header{}
	h.Set(headerUser, a.cfg.User)
	h.Set(headerSupplier, a.cfg.SupplierAccount)
	for _, kv := range extra {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return pool.RequestConfig{}, fmt.Errorf("bad header %q, want k=v", kv)
		}
		h.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	if h.Get(headerRequestID) == "" {
		h.Set(headerRequestID, newRequestID())
	}
	log.Info().Str("rid", h.Get(headerRequestID)).Str("backend", a.cfg.Backend).Msg("dispatching")
	return pool.RequestConfig{Header: h}, nil
}

func newRequestID() string {
	return "cc" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func printResponse(w io.Writer, resp pool.Response) error {
	_, err := fmt.Fprintf(w, "HTTP %d\n%s\n", resp.StatusCode(), resp.Body())
	return err
}

func printSummary(w io.Writer, resp pool.Response) error {
	diffs, err := settemplate.DecodeSetDiffs(resp)
	if err != nil {
		return err
	}
	need := settemplate.NeedsSync(diffs)

	var sb strings.Builder
	if len(need) == 0 {
		fmt.Fprintf(&sb, "%d set(s) checked, all in sync\n", len(diffs))
	} else {
		fmt.Fprintf(&sb, "%d of %d set(s) need sync\n", len(need), len(diffs))
	}
	for _, d := range diffs {
		changes := d.Changes()
		if !d.NeedSync && len(changes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "set %d:\n", d.SetID)
		for _, m := range changes {
			fmt.Fprintf(&sb, "  %-9s module=%d %q (service template %d %q)\n",
				m.DiffType, m.ModuleID, m.ModuleName, m.ServiceTemplateID, m.ServiceTemplateName)
		}
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
