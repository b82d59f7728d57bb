package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/usawrapco/shoptrack/internal/comp"
	"github.com/usawrapco/shoptrack/internal/job"
	"github.com/usawrapco/shoptrack/internal/lifecycle"
)

// InsertJob creates a new job at the intake stage.
func (c *Client) InsertJob(ctx context.Context, j *job.Job) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.Stage == "" {
		j.Stage = job.StageIntake
	}
	formData, finData, actuals, checkout, err := packBags(j)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Insert("Jobs", jobColumns,
			[]interface{}{
				j.OrgID, j.ID, string(j.Stage), j.CustomerID, j.Vehicle,
				j.SalesRepID, j.InstallerID,
				j.Revenue, j.Profit, j.GPM, j.Commission,
				formData, finData, actuals, checkout,
				now, spanner.CommitTimestamp, spanner.CommitTimestamp, nil,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by org ID and job ID.
func (c *Client) GetJob(ctx context.Context, orgID, jobID string) (*job.Job, error) {
	row, err := c.client.Single().ReadRow(ctx, "Jobs", spanner.Key{orgID, jobID}, jobColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	var r JobRow
	if err := row.ToStruct(&r); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return r.toDomain()
}

// UpdateJobFields persists the mutable non-stage fields (form data, costs,
// actuals, sign-offs). Stage and commission only move through AdvanceJob and
// SendBackJob.
func (c *Client) UpdateJobFields(ctx context.Context, j *job.Job) error {
	formData, finData, actuals, checkout, err := packBags(j)
	if err != nil {
		return err
	}
	_, err = c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Update("Jobs",
			[]string{"OrgId", "JobId", "CustomerId", "Vehicle", "SalesRepId", "InstallerId",
				"Revenue", "FormDataJson", "FinDataJson", "ActualsJson", "CheckoutJson", "UpdatedAt"},
			[]interface{}{j.OrgID, j.ID, j.CustomerID, j.Vehicle, j.SalesRepID, j.InstallerID,
				j.Revenue, formData, finData, actuals, checkout, spanner.CommitTimestamp},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// ListOpenJobs returns the org's jobs that have not reached done, newest
// first. Feeds the triage board.
func (c *Client) ListOpenJobs(ctx context.Context, orgID string) ([]*job.Job, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(jobColumns) + `
		      FROM Jobs
		      WHERE OrgId = @orgId AND Stage != @done
		      ORDER BY CreatedAt DESC`,
		Params: map[string]interface{}{
			"orgId": orgID,
			"done":  string(job.StageDone),
		},
	}
	return c.queryJobs(ctx, stmt)
}

// ListJobsCompletedInRange returns the org's jobs that reached done inside
// [start, end]. Feeds the payroll run.
func (c *Client) ListJobsCompletedInRange(ctx context.Context, orgID string, start, end time.Time) ([]*job.Job, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(jobColumns) + `
		      FROM Jobs
		      WHERE OrgId = @orgId AND Stage = @done
		        AND CompletedAt >= @start AND CompletedAt <= @end
		      ORDER BY CompletedAt`,
		Params: map[string]interface{}{
			"orgId": orgID,
			"done":  string(job.StageDone),
			"start": start,
			"end":   end,
		},
	}
	return c.queryJobs(ctx, stmt)
}

// AdvanceJob commits a forward stage transition. The stage field, the
// financial snapshot (when the transition closes the job) and the audit row
// are one transaction; a job whose stage or version moved under us fails with
// lifecycle.ErrConflict so the caller can re-fetch and re-evaluate.
func (c *Client) AdvanceJob(ctx context.Context, j *job.Job, from, to job.Stage, fin *comp.Result, actor string) error {
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, "Jobs", spanner.Key{j.OrgID, j.ID}, []string{"Stage", "UpdatedAt"})
		if err != nil {
			return fmt.Errorf("failed to read job for advancement: %w", err)
		}
		var stage string
		var updatedAt time.Time
		if err := row.Columns(&stage, &updatedAt); err != nil {
			return fmt.Errorf("failed to parse job version: %w", err)
		}
		// Optimistic check: the snapshot we evaluated must still be current.
		if stage != string(from) || (!j.UpdatedAt.IsZero() && !updatedAt.Equal(j.UpdatedAt)) {
			return lifecycle.ErrConflict
		}

		now := time.Now().UTC()
		cols := []string{"OrgId", "JobId", "Stage", "StageEnteredAt", "UpdatedAt"}
		vals := []interface{}{j.OrgID, j.ID, string(to), now, spanner.CommitTimestamp}
		if fin != nil {
			cols = append(cols, "Profit", "Gpm", "Commission", "CompletedAt")
			vals = append(vals, fin.GrossProfit, fin.GPM, fin.Commission, now)
		}
		muts := []*spanner.Mutation{
			spanner.Update("Jobs", cols, vals),
			transitionMutation(j.OrgID, j.ID, from, to, actor, nil, now),
		}
		return txn.BufferWrite(muts)
	})
	if err != nil {
		if err == lifecycle.ErrConflict || spanner.ErrCode(err) == codes.Aborted {
			return lifecycle.ErrConflict
		}
		return fmt.Errorf("failed to advance job: %w", err)
	}
	return nil
}

// SendBackJob commits a backward transition with its reason in the audit row.
// Gate checks are the lifecycle engine's business; this only persists.
func (c *Client) SendBackJob(ctx context.Context, j *job.Job, from, to job.Stage, reason, actor string) error {
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, "Jobs", spanner.Key{j.OrgID, j.ID}, []string{"Stage"})
		if err != nil {
			return fmt.Errorf("failed to read job for send-back: %w", err)
		}
		var stage string
		if err := row.Columns(&stage); err != nil {
			return fmt.Errorf("failed to parse job stage: %w", err)
		}
		if stage != string(from) {
			return lifecycle.ErrConflict
		}

		now := time.Now().UTC()
		muts := []*spanner.Mutation{
			spanner.Update("Jobs",
				[]string{"OrgId", "JobId", "Stage", "StageEnteredAt", "CompletedAt", "UpdatedAt"},
				[]interface{}{j.OrgID, j.ID, string(to), now, nil, spanner.CommitTimestamp},
			),
			transitionMutation(j.OrgID, j.ID, from, to, actor, &reason, now),
		}
		return txn.BufferWrite(muts)
	})
	if err != nil {
		if err == lifecycle.ErrConflict || spanner.ErrCode(err) == codes.Aborted {
			return lifecycle.ErrConflict
		}
		return fmt.Errorf("failed to send back job: %w", err)
	}
	return nil
}

func (c *Client) queryJobs(ctx context.Context, stmt spanner.Statement) ([]*job.Job, error) {
	iter := c.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var jobs []*job.Job
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate jobs: %w", err)
		}
		var r JobRow
		if err := row.ToStruct(&r); err != nil {
			return nil, fmt.Errorf("failed to parse job: %w", err)
		}
		j, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func packBags(j *job.Job) (formData, finData, actuals, checkout string, err error) {
	if formData, err = packBag(j.FormData); err != nil {
		return
	}
	if finData, err = packBag(j.FinData); err != nil {
		return
	}
	if actuals, err = packBag(j.Actuals); err != nil {
		return
	}
	checkout, err = packBag(j.Checkout)
	return
}

// columnList joins column names for a SELECT.
func columnList(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
