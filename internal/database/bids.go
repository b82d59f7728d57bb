package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/usawrapco/shoptrack/internal/job"
	"github.com/usawrapco/shoptrack/internal/lifecycle"
)

// InsertBid creates a pending bid.
func (c *Client) InsertBid(ctx context.Context, b *job.InstallerBid) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	var expiresAt interface{}
	if !b.ExpiresAt.IsZero() {
		expiresAt = b.ExpiresAt
	}
	_, err := c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Insert("InstallerBids", bidColumns,
			[]interface{}{
				b.OrgID, b.ID, b.JobID, b.InstallerID, b.Amount, b.HoursBudget,
				string(job.BidPending), expiresAt, spanner.CommitTimestamp, spanner.CommitTimestamp,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to insert bid: %w", err)
	}
	return nil
}

// GetBid retrieves a bid by org ID and bid ID.
func (c *Client) GetBid(ctx context.Context, orgID, bidID string) (*job.InstallerBid, error) {
	row, err := c.client.Single().ReadRow(ctx, "InstallerBids", spanner.Key{orgID, bidID}, bidColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	var r BidRow
	if err := row.ToStruct(&r); err != nil {
		return nil, fmt.Errorf("failed to parse bid: %w", err)
	}
	return r.toDomain(), nil
}

// AcceptBid is the compare-and-set pending → accepted. Inside one
// transaction it verifies the bid is still pending and unexpired and that no
// other bid on the same job is already accepted; a lost race surfaces as
// lifecycle.ErrConflict so exactly one concurrent acceptance wins.
func (c *Client) AcceptBid(ctx context.Context, orgID, bidID string) error {
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, "InstallerBids", spanner.Key{orgID, bidID},
			[]string{"JobId", "Status", "ExpiresAt"})
		if err != nil {
			return fmt.Errorf("failed to read bid: %w", err)
		}
		var jobID, status string
		var expiresAt spanner.NullTime
		if err := row.Columns(&jobID, &status, &expiresAt); err != nil {
			return fmt.Errorf("failed to parse bid state: %w", err)
		}

		now := time.Now().UTC()
		if status != string(job.BidPending) {
			return lifecycle.ErrConflict
		}
		if expiresAt.Valid && now.After(expiresAt.Time) {
			// Lazily retire the row while we are here.
			if err := txn.BufferWrite([]*spanner.Mutation{
				spanner.Update("InstallerBids",
					[]string{"OrgId", "BidId", "Status", "UpdatedAt"},
					[]interface{}{orgID, bidID, string(job.BidExpired), spanner.CommitTimestamp},
				),
			}); err != nil {
				return err
			}
			return lifecycle.ErrConflict
		}

		// At most one accepted bid per job.
		stmt := spanner.Statement{
			SQL: `SELECT BidId FROM InstallerBids
			      WHERE OrgId = @orgId AND JobId = @jobId AND Status = @accepted
			      LIMIT 1`,
			Params: map[string]interface{}{
				"orgId":    orgID,
				"jobId":    jobID,
				"accepted": string(job.BidAccepted),
			},
		}
		iter := txn.Query(ctx, stmt)
		defer iter.Stop()
		if _, err := iter.Next(); err != iterator.Done {
			if err != nil {
				return fmt.Errorf("failed to check accepted bids: %w", err)
			}
			return lifecycle.ErrConflict
		}

		return txn.BufferWrite([]*spanner.Mutation{
			spanner.Update("InstallerBids",
				[]string{"OrgId", "BidId", "Status", "UpdatedAt"},
				[]interface{}{orgID, bidID, string(job.BidAccepted), spanner.CommitTimestamp},
			),
		})
	})
	if err != nil {
		if err == lifecycle.ErrConflict || spanner.ErrCode(err) == codes.Aborted {
			return lifecycle.ErrConflict
		}
		return fmt.Errorf("failed to accept bid: %w", err)
	}
	return nil
}

// DeclineBid marks a pending bid declined.
func (c *Client) DeclineBid(ctx context.Context, orgID, bidID string) error {
	_, err := c.client.Apply(ctx, []*spanner.Mutation{
		spanner.Update("InstallerBids",
			[]string{"OrgId", "BidId", "Status", "UpdatedAt"},
			[]interface{}{orgID, bidID, string(job.BidDeclined), spanner.CommitTimestamp},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to decline bid: %w", err)
	}
	return nil
}

// ListBidsForJob returns all bids on a job, newest first. Callers that need
// "active" bids must apply the lazy expiry filter via Eligible — expired rows
// can still sit at pending.
func (c *Client) ListBidsForJob(ctx context.Context, orgID, jobID string) ([]*job.InstallerBid, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(bidColumns) + `
		      FROM InstallerBids
		      WHERE OrgId = @orgId AND JobId = @jobId
		      ORDER BY CreatedAt DESC`,
		Params: map[string]interface{}{
			"orgId": orgID,
			"jobId": jobID,
		},
	}
	return c.queryBids(ctx, stmt)
}

// ListAcceptedBids returns the org's accepted bids. The payroll loader
// re-applies the expiry filter at read time.
func (c *Client) ListAcceptedBids(ctx context.Context, orgID string) ([]*job.InstallerBid, error) {
	stmt := spanner.Statement{
		SQL: `SELECT ` + columnList(bidColumns) + `
		      FROM InstallerBids
		      WHERE OrgId = @orgId AND Status = @accepted`,
		Params: map[string]interface{}{
			"orgId":    orgID,
			"accepted": string(job.BidAccepted),
		},
	}
	return c.queryBids(ctx, stmt)
}

func (c *Client) queryBids(ctx context.Context, stmt spanner.Statement) ([]*job.InstallerBid, error) {
	iter := c.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var bids []*job.InstallerBid
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate bids: %w", err)
		}
		var r BidRow
		if err := row.ToStruct(&r); err != nil {
			return nil, fmt.Errorf("failed to parse bid: %w", err)
		}
		bids = append(bids, r.toDomain())
	}
	return bids, nil
}
