package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/audit"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/config"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/db"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/backoffice-audit/pkg/server/store/gorm"
)

// entriesCmd represents the entries command
var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Read the audit trail",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'entries' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries, newest first",
	Long: `List audit entries, newest first.

Example:
  auditctl entries list
  auditctl entries list --tag umbraco/user/delete --user 7 --limit 20`,
	Run: func(cmd *cobra.Command, args []string) {
		tag, _ := cmd.Flags().GetString("tag")
		user, _ := cmd.Flags().GetInt("user")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.EntryFilter{EventType: tag, Limit: limit}
		if cmd.Flags().Changed("user") {
			filter.PerformingUserID = &user
		}

		if err := listEntries(filter); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list entries: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(entriesCmd)
	entriesCmd.AddCommand(entriesListCmd)
	entriesListCmd.Flags().String("tag", "", "only entries with this event type")
	entriesListCmd.Flags().Int("user", 0, "only entries performed by this user id")
	entriesListCmd.Flags().Int("limit", 50, "maximum number of entries")
}

func listEntries(filter store.EntryFilter) error {
	if filter.EventType != "" && !audit.Tag(filter.EventType).Valid() {
		return fmt.Errorf("unknown tag %q", filter.EventType)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	database, err := db.Connect(db.Config{URL: cfg.AuditDatabase(), LogLevel: cfg.LogLevel})
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	entries, err := gormstore.NewEntriesStore(database).ListEntries(context.Background(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE (UTC)\tEVENT\tPERFORMER\tIP\tAFFECTED\tDETAILS")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d\t%s\n",
			e.ID,
			e.EventDateUTC.UTC().Format(time.RFC3339),
			e.EventType,
			e.PerformingUserID,
			e.PerformingIP,
			e.AffectedUserID,
			e.EventDetails,
		)
	}
	return w.Flush()
}
