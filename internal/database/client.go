// Package database is the Cloud Spanner adapter behind the job record store.
// It implements only the reads the core consumes and the two writes that
// carry concurrency obligations: the atomic stage+commission update and the
// bid-acceptance compare-and-set. Every call takes an explicit org ID; there
// is no default org.
package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// Client wraps a Spanner client for the shoptrack database.
type Client struct {
	client *spanner.Client
}

// NewClient creates a database client for
// projects/<projectID>/instances/<instance>/databases/<database>.
func NewClient(ctx context.Context, projectID, instance, database string) (*Client, error) {
	path := fmt.Sprintf("projects/%s/instances/%s/databases/%s", projectID, instance, database)
	sc, err := spanner.NewClient(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create spanner client: %w", err)
	}
	return &Client{client: sc}, nil
}

// Close releases the underlying Spanner client.
func (c *Client) Close() {
	c.client.Close()
}
