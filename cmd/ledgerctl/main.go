package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"donor-batch-ledger/internal/config"
	"donor-batch-ledger/internal/logging"
	"donor-batch-ledger/internal/store"
)

var exampleUsage = strings.TrimSpace(`
  ledgerctl migrate
  ledgerctl commit --file march-checks.yaml --campaign 4
  ledgerctl donors search cohen
  ledgerctl report donations --from 2026-01-01 --to 2026-04-01 --out q1.xlsx
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app is the state shared by the subcommands once the root has loaded the
// configuration.
type app struct {
	cfg config.Config
	log zerolog.Logger
}

// withStore opens the store, migrating it, for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(st *store.Store) error) error {
	st, err := store.Open(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}
	var cfgPath string

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the donor batch ledger from the command line",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(&a.cfg, cfgPath, config.ChangedFlags(cmd.Flags())); err != nil {
				return err
			}
			a.log = logging.New(a.cfg.LogLevel, a.cfg.LogPretty)
			a.log.Debug().Interface("config", a.cfg.Redacted()).Msg("configuration")
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $HOME/.batchledger/config.toml)")
	config.BindFlags(root.PersistentFlags(), &a.cfg)

	root.AddCommand(
		newMigrateCmd(a),
		newCommitCmd(a),
		newDonorsCmd(a),
		newReportCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
