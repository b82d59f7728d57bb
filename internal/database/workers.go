package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/usawrapco/shoptrack/internal/job"
)

// InsertWorker creates a worker on the org's roster.
func (c *Client) InsertWorker(ctx context.Context, w *job.Worker) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	_, err := c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Insert("Workers", workerColumns,
			[]interface{}{
				w.OrgID, w.ID, w.Name, string(w.Role), w.Active,
				string(w.Pay.WorkerType), w.Pay.HourlyRate, w.Pay.Salary,
				w.Pay.WeeklyMinimum, w.Pay.CommissionOverride,
				spanner.CommitTimestamp, spanner.CommitTimestamp,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to insert worker: %w", err)
	}
	return nil
}

// GetWorker retrieves a worker by org ID and worker ID.
func (c *Client) GetWorker(ctx context.Context, orgID, workerID string) (*job.Worker, error) {
	row, err := c.client.Single().ReadRow(ctx, "Workers", spanner.Key{orgID, workerID}, workerColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	var r WorkerRow
	if err := row.ToStruct(&r); err != nil {
		return nil, fmt.Errorf("failed to parse worker: %w", err)
	}
	return r.toDomain(), nil
}

// PaySettings returns one worker's pay settings. Satisfies the lifecycle
// engine's store contract for the commission override lookup.
func (c *Client) PaySettings(ctx context.Context, orgID, workerID string) (*job.PaySettings, error) {
	w, err := c.GetWorker(ctx, orgID, workerID)
	if err != nil {
		return nil, err
	}
	return &w.Pay, nil
}

// UpdatePaySettings replaces a worker's pay configuration.
func (c *Client) UpdatePaySettings(ctx context.Context, orgID, workerID string, pay job.PaySettings) error {
	_, err := c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Update("Workers",
			[]string{"OrgId", "WorkerId", "WorkerType", "HourlyRate", "Salary",
				"WeeklyMinimum", "CommissionOverride", "UpdatedAt"},
			[]interface{}{orgID, workerID, string(pay.WorkerType), pay.HourlyRate,
				pay.Salary, pay.WeeklyMinimum, pay.CommissionOverride, spanner.CommitTimestamp},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to update pay settings: %w", err)
	}
	return nil
}

// ListActiveWorkers returns the org's active roster.
func (c *Client) ListActiveWorkers(ctx context.Context, orgID string) ([]*job.Worker, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(workerColumns) + `
		      FROM Workers
		      WHERE OrgId = @orgId AND Active = TRUE
		      ORDER BY Name`,
		Params: map[string]interface{}{
			"orgId": orgID,
		},
	}

	iter := c.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var workers []*job.Worker
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate workers: %w", err)
		}
		var r WorkerRow
		if err := row.ToStruct(&r); err != nil {
			return nil, fmt.Errorf("failed to parse worker: %w", err)
		}
		workers = append(workers, r.toDomain())
	}
	return workers, nil
}
