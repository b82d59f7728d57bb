package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/usawrapco/shoptrack/internal/config"
	"github.com/usawrapco/shoptrack/internal/database"
	"github.com/usawrapco/shoptrack/internal/triage"
)

var triageOrg string

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Show the triage board for open jobs",
	RunE:  runTriage,
}

func init() {
	triageCmd.Flags().StringVar(&triageOrg, "org", "", "Organization ID (required)")
	triageCmd.MarkFlagRequired("org")
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.Background()
	dbClient, err := database.NewClient(ctx, cfg.Database.ProjectID, cfg.Database.Instance, cfg.Database.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database client: %w", err)
	}
	defer dbClient.Close()

	jobs, err := dbClient.ListOpenJobs(ctx, triageOrg)
	if err != nil {
		return fmt.Errorf("failed to list open jobs: %w", err)
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSTAGE\tDAYS\tVEHICLE\tSEVERITY\tDETAIL")
	// Worst problems first.
	for _, severity := range []triage.Severity{triage.SeverityBlocked, triage.SeverityStalled, triage.SeverityOnTrack} {
		for _, j := range jobs {
			days := j.DaysInStage(now)
			cls := triage.Classify(j, days)
			if cls.Severity != severity {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				j.ID, j.Stage, days, j.Vehicle, cls.Severity, cls.Label)
		}
	}
	return w.Flush()
}
