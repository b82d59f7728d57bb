package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/usawrapco/shoptrack/internal/job"
)

// InsertTimeEntry records a logged duration. A nil end timestamp is stored
// as-is; the domain layer flags it as a missed clock-out, it is not rejected
// here.
func (c *Client) InsertTimeEntry(ctx context.Context, e *job.TimeEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	var jobID, notes interface{}
	if e.JobID != "" {
		jobID = e.JobID
	}
	if e.Notes != "" {
		notes = e.Notes
	}
	var end interface{}
	if !e.End.IsZero() {
		end = e.End
	}
	_, err := c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Insert("TimeEntries", timeEntryColumns,
			[]interface{}{e.OrgID, e.ID, e.WorkerID, jobID, e.Start, end, string(e.Type), notes},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to insert time entry: %w", err)
	}
	return nil
}

// CloseTimeEntry stamps the end of an open entry.
func (c *Client) CloseTimeEntry(ctx context.Context, orgID, entryID string, end time.Time) error {
	_, err := c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Update("TimeEntries",
			[]string{"OrgId", "EntryId", "EndAt"},
			[]interface{}{orgID, entryID, end},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to close time entry: %w", err)
	}
	return nil
}

// ListTimeEntriesInRange returns the org's entries whose start falls within
// [start, end].
func (c *Client) ListTimeEntriesInRange(ctx context.Context, orgID string, start, end time.Time) ([]*job.TimeEntry, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(timeEntryColumns) + `
		      FROM TimeEntries
		      WHERE OrgId = @orgId AND StartAt >= @start AND StartAt <= @end
		      ORDER BY StartAt`,
		Params: map[string]interface{}{
			"orgId": orgID,
			"start": start,
			"end":   end,
		},
	}

	iter := c.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var entries []*job.TimeEntry
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate time entries: %w", err)
		}
		var r TimeEntryRow
		if err := row.ToStruct(&r); err != nil {
			return nil, fmt.Errorf("failed to parse time entry: %w", err)
		}
		entries = append(entries, r.toDomain())
	}
	return entries, nil
}
