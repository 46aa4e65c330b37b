package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/spool"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Raise event files dropped into a spool directory",
	Long: `Raise event files dropped into a spool directory.

Files already in the directory are raised first, in name order. Writers must
create files under a name ending in ".tmp" and rename them into place.
Processed files are renamed to *.done, files that fail to *.failed.

The directory defaults to spool_dir.

Example:
  auditctl watch /var/spool/backoffice-audit`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}

		if err := watchSpool(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch spool: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchSpool(dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.SpoolDir
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := newPipeline(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := spool.NewWatcher(dir, p.bus, logger.Named("spool"))
	fmt.Printf("Watching %s for event files\n", w.Dir())
	return w.Run(ctx)
}
