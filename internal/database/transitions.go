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

// StageTransition is one audit record of a job moving between stages.
type StageTransition struct {
	OrgID          string
	JobID          string
	ID             string
	From           job.Stage
	To             job.Stage
	Actor          string
	Reason         string
	TransitionedAt time.Time
}

// transitionMutation builds the audit row written alongside every stage
// change, inside the same transaction as the job update.
func transitionMutation(orgID, jobID string, from, to job.Stage, actor string, reason *string, at time.Time) *spanner.Mutation {
	return spanner.Insert("StageTransitions", transitionColumns,
		[]interface{}{
			orgID, jobID, uuid.New().String(),
			string(from), string(to), actor, reason, at,
		},
	)
}

// ListTransitions returns a job's stage history, oldest first.
func (c *Client) ListTransitions(ctx context.Context, orgID, jobID string) ([]*StageTransition, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(transitionColumns) + `
		      FROM StageTransitions
		      WHERE OrgId = @orgId AND JobId = @jobId
		      ORDER BY TransitionedAt`,
		Params: map[string]interface{}{
			"orgId": orgID,
			"jobId": jobID,
		},
	}

	iter := c.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var transitions []*StageTransition
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transitions: %w", err)
		}
		var r StageTransitionRow
		if err := row.ToStruct(&r); err != nil {
			return nil, fmt.Errorf("failed to parse transition: %w", err)
		}
		t := &StageTransition{
			OrgID:          r.OrgId,
			JobID:          r.JobId,
			ID:             r.TransitionId,
			From:           job.Stage(r.FromStage),
			To:             job.Stage(r.ToStage),
			Actor:          r.Actor,
			TransitionedAt: r.TransitionedAt,
		}
		if r.Reason != nil {
			t.Reason = *r.Reason
		}
		transitions = append(transitions, t)
	}
	return transitions, nil
}
