package database

import (
	"context"
	"time"

	"github.com/usawrapco/shoptrack/internal/payroll"
)

// LoadPayrollSnapshot gathers everything a pay period run needs: the active
// roster, time entries overlapping the window, jobs completed in the window,
// and the org's accepted installer bids.
func (c *Client) LoadPayrollSnapshot(ctx context.Context, orgID string, start, end time.Time) (*payroll.Snapshot, error) {
	workers, err := c.ListActiveWorkers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	entries, err := c.ListTimeEntriesInRange(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}
	jobs, err := c.ListJobsCompletedInRange(ctx, orgID, start, end)
	if err != nil {
		return nil, err
	}
	bids, err := c.ListAcceptedBids(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &payroll.Snapshot{
		Workers:     workers,
		TimeEntries: entries,
		ClosedJobs:  jobs,
		Bids:        bids,
	}, nil
}
