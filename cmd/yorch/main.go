package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/naveenspark/yorch/internal/config"
	ylog "github.com/naveenspark/yorch/internal/log"
	"github.com/naveenspark/yorch/internal/tui"
	"github.com/naveenspark/yorch/pkg/auth"
	"github.com/naveenspark/yorch/pkg/client"
	"github.com/naveenspark/yorch/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "yorch",
		Short:         "Terminal client for the Yorch loan assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(configFile)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or env); defaults to $"+config.PathEnv)
	root.AddCommand(
		newLoginCmd(&configFile),
		newLogoutCmd(&configFile),
		newStatusCmd(&configFile),
		newVersionCmd(),
	)
	return root
}

// deps is the wired session stack shared by every command.
type deps struct {
	cfg   *config.Config
	log   zerolog.Logger
	kv    *session.FallbackKV
	ctl   *auth.Controller
	api   *client.Client
	close func()
}

// setup loads config and wires store, controller and client. logger picks the
// log destination; the TUI cannot log to the terminal it draws on.
func setup(configFile string, logger func(*config.Config) (zerolog.Logger, func(), error)) (*deps, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logger(cfg)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("env", cfg.Env).Logger()

	kv := session.NewFallbackKV(session.NewFileKV(cfg.SessionFile), log)
	store := session.NewStore(kv, session.WithLogger(log))
	api := client.New(cfg.APIURL, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(log))
	ctl := auth.NewController(store, api, auth.WithLogger(log))
	api = api.WithSession(ctl)
	ctl.Initialize()

	return &deps{
		cfg: cfg,
		log: log,
		kv:  kv,
		ctl: ctl,
		api: api,
		close: func() {
			ctl.Close()
			closeLog()
		},
	}, nil
}

func fileLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	l, f, err := ylog.File(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return l, func() { f.Close() }, nil //nolint:errcheck // best-effort close
}

func consoleLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	return ylog.Console(cfg.Log.Level), func() {}, nil
}

func runTUI(configFile string) error {
	rt, err := setup(configFile, fileLogger)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.log.Info().Str("api", rt.api.BaseURL()).Str("version", version).Msg("starting tui")
	p := tea.NewProgram(tui.NewApp(rt.ctl, rt.api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
