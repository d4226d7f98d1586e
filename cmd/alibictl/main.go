// Command alibictl walks the excuse wizard from the terminal against a
// running alibi server.
package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/alibi/internal/client"
)

type rootOptions struct {
	baseURL   string
	statePath string
	timeout   time.Duration
	verbose   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "alibictl",
		Short: "Generate excuses from the command line",
		Long: `alibictl drives the excuse wizard against an alibi server.

The wizard form and the last generation id are kept in a state file so
that regenerate and track can follow up on the previous run.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("ALIBI_URL", client.DefaultBaseURL), "alibi server URL (or set ALIBI_URL)")
	root.PersistentFlags().StringVar(&opts.statePath, "state", defaultStatePath(), "Wizard state file")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newScenariosCmd(opts))
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newRegenerateCmd(opts))
	root.AddCommand(newTrackCmd(opts))
	root.AddCommand(newResetCmd(opts))
	return root
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	lvl := slog.LevelWarn
	if o.verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func (o *rootOptions) client(cmd *cobra.Command, sessionID string) *client.Client {
	c := client.NewClient(o.baseURL, o.timeout, o.logger(cmd.ErrOrStderr()))
	c.SetSessionID(sessionID)
	return c
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".alibi-state.json"
	}
	return filepath.Join(dir, "alibi", "wizard.json")
}
