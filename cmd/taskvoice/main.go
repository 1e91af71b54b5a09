package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskvoice/internal/bootstrap"
	"taskvoice/internal/config"
	"taskvoice/internal/i18n"
	"taskvoice/internal/repl"
	"taskvoice/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 跨子命令共享的运行时状态
// app is the runtime state shared by every subcommand
type app struct {
	configPath string
	envFile    string
	verbose    bool

	cfg      config.Config
	log      zerolog.Logger
	logClose io.Closer

	// buildOpts lets tests swap the backend and tokenizer.
	buildOpts bootstrap.BuildOptions
	// input overrides the interactive line reader.
	input repl.LineInput
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{})
}

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskvoice",
		Short: "Voice and text assistant for tasks and missions",
		Long: `taskvoice keeps a schedule of tasks and a list of missions and lets you
manage them by talking to an assistant. Changes the assistant proposes are
only applied after you confirm them.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: a.runChat,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config JSON/JSONC/YAML")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Dotenv file loaded before config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newTasksCmd(a),
		newMissionsCmd(a),
		newProfileCmd(a),
		newImportCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.envFile != "" {
		// 缺少 .env 不是错误 / a missing .env is fine
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	log, closer, err := newLogger(cfg, a.verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = log
	a.logClose = closer
	return nil
}

func (a *app) teardown() error {
	if a.logClose == nil {
		return nil
	}
	err := a.logClose.Close()
	a.logClose = nil
	return err
}

func (a *app) i18n() *i18n.I18n {
	return i18n.New(a.cfg.Locale)
}

// openStore opens the database for commands that never talk to a backend.
func (a *app) openStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(a.cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runChat,
	}
}

func (a *app) runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := bootstrap.Build(ctx, a.cfg, a.log, a.buildOpts)
	if err != nil {
		return err
	}
	defer res.Store.Close()

	_, stopMetrics, err := startMetricsServer(a.cfg.Metrics.Addr, res.Metrics, a.log)
	if err != nil {
		a.log.Warn().Err(err).Str("addr", a.cfg.Metrics.Addr).Msg("metrics endpoint disabled")
	}
	defer stopMetrics()

	input := a.input
	if input == nil {
		var inputErr error
		input, inputErr = repl.NewLineInput(filepath.Join(a.cfg.Storage.BaseDir, "repl.history"))
		if inputErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "line editor unavailable, fallback to basic input: %v\n", inputErr)
		}
	}
	defer input.Close()

	return repl.NewLoop(res, input, cmd.OutOrStdout(), a.log).Run(ctx)
}
