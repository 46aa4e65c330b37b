package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/events"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/spool"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <file>...",
	Short: "Raise the events stored in envelope files",
	Long: `Raise the events stored in envelope files, in argument order.

Each file holds one event envelope in YAML or JSON:

  kind: member-roles-assigned
  principal: 7
  remote_addr: 10.0.0.4
  payload:
    member_ids: [1, 2]
    roles: [editors]

With --dry-run the events go straight to the audit router, skipping any other
subscriber, and the resulting entries are printed as syslog lines instead of
being appended to the configured sinks. Lookups still use the back-office
database.

Example:
  auditctl replay events/0001.yml events/0002.yml
  auditctl replay --dry-run events/0001.yml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := replay(args, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("dry-run", false, "print entries instead of appending them")
}

func replay(files []string, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var sink audit.Sink
	if dryRun {
		sink = audit.NewLogger(cfg.SyslogAppName)
	}

	p, err := newPipeline(cfg, logger, sink)
	if err != nil {
		return err
	}
	defer p.Close()

	var raiser events.Raiser = p.bus
	if dryRun {
		raiser = p.router
	}

	for _, file := range files {
		if err := replayFile(context.Background(), raiser, file); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func replayFile(ctx context.Context, raiser events.Raiser, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	env, payload, err := events.ReadEnvelope(f)
	if err != nil {
		return err
	}
	return raiser.Raise(spool.EnvelopeContext(ctx, env), env.Kind, payload)
}
