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
	"github.com/usawrapco/shoptrack/internal/payroll"
)

var (
	payrollOrg   string
	payrollStart string
	payrollEnd   string
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Run payroll for a pay period",
	Long:  `Compute pay statements for every active worker over a period. Nothing is persisted; re-running is safe.`,
	RunE:  runPayroll,
}

func init() {
	payrollCmd.Flags().StringVar(&payrollOrg, "org", "", "Organization ID (required)")
	payrollCmd.Flags().StringVar(&payrollStart, "start", "", "Period start, YYYY-MM-DD (required)")
	payrollCmd.Flags().StringVar(&payrollEnd, "end", "", "Period end, YYYY-MM-DD (required)")
	payrollCmd.MarkFlagRequired("org")
	payrollCmd.MarkFlagRequired("start")
	payrollCmd.MarkFlagRequired("end")
}

func runPayroll(cmd *cobra.Command, args []string) error {
	start, err := time.Parse("2006-01-02", payrollStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", payrollEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	// The end date is inclusive.
	end = end.Add(24*time.Hour - time.Nanosecond)
	if !end.After(start) {
		return fmt.Errorf("--end must be after --start")
	}

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

	plan, err := loadPlan(cfg)
	if err != nil {
		return err
	}

	snap, err := dbClient.LoadPayrollSnapshot(ctx, payrollOrg, start, end)
	if err != nil {
		return fmt.Errorf("failed to load payroll snapshot: %w", err)
	}

	res := payroll.NewProcessor(plan).Run(start, end, snap)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WORKER\tCOHORT\tHOURS\tBASE\tCOMMISSION\tBONUS\tTOTAL")
	for _, st := range res.Statements {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			st.WorkerName, st.Cohort, st.Hours, st.BasePay, st.Commission, st.Bonus, st.Total)
	}
	w.Flush()

	fmt.Printf("\nEmployees: %d ($%.2f)  Contractors: %d ($%.2f)  Grand total: $%.2f\n",
		res.EmployeeCount, res.EmployeeTotal, res.ContractorCount, res.ContractorTotal, res.GrandTotal)

	for _, we := range res.Errors {
		fmt.Fprintf(os.Stderr, "worker %s skipped: %s\n", we.WorkerID, we.Err)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d worker(s) could not be processed", len(res.Errors))
	}
	return nil
}
