package cli

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"settemplatesync/pkg/config"
	"settemplatesync/pkg/fiberpool"
	"settemplatesync/pkg/logging"
	"settemplatesync/pkg/pool"
	"settemplatesync/pkg/restypool"
	"settemplatesync/pkg/settemplate"
)

func Execute() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	baseURL    string
	backend    string
	timeout    time.Duration
	debug      bool
}

// app is opened by the commands that talk to the backend, so help and
// completion work without a config.
type app struct {
	flags   *globalFlags
	cfg     config.Config
	client  pool.Client
	actions *settemplate.Actions
	out     io.Writer
	logOut  io.Writer
}

// open loads config and builds the client pool. The caller defers close.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, *a.flags)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Debug, a.logOut)

	a.cfg = cfg
	a.client = newClient(cfg)
	a.actions = settemplate.New(a.client)
	return nil
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags
	a := &app{flags: &g, out: stdout, logOut: stderr}

	cmd := &cobra.Command{
		Use:          "settplctl",
		Short:        "Diff and sync CMDB set templates against their set instances",
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file")
	pf.StringVar(&g.baseURL, "base-url", "", "CMDB API base url, e.g. http://cmdb/api/v3")
	pf.StringVar(&g.backend, "backend", "", "http client backend: resty or fiber")
	pf.DurationVar(&g.timeout, "timeout", 0, "client request timeout")
	pf.BoolVar(&g.debug, "debug", false, "log every request")

	cmd.AddCommand(diffCmd(a), syncCmd(a))
	return cmd
}

// loadConfig layers explicitly set flags over file and environment.
func loadConfig(cmd *cobra.Command, g globalFlags) (config.Config, error) {
	cfg, err := config.Read(g.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = g.baseURL
	}
	if flags.Changed("backend") {
		cfg.Backend = g.backend
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = g.timeout
	}
	if flags.Changed("debug") {
		cfg.Debug = g.debug
	}
	return cfg, cfg.Validate()
}

var newClient = func(cfg config.Config) pool.Client {
	if cfg.Backend == config.BackendFiber {
		return fiberpool.New(cfg)
	}
	return restypool.New(cfg)
}
