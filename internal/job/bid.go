package job

import "time"

// BidStatus is the lifecycle of an installer bid.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidExpired  BidStatus = "expired"
	BidDeclined BidStatus = "declined"
)

// InstallerBid is an offer of flat-rate pay for one job to one contractor.
// At most one bid per job may be accepted; acceptance is a compare-and-set
// handled by the store. Expiry is evaluated lazily at read time, so a row can
// sit at pending past its ExpiresAt — readers must call Eligible, not trust
// Status alone.
type InstallerBid struct {
	ID          string
	OrgID       string
	JobID       string
	InstallerID string
	Amount      float64
	HoursBudget float64
	Status      BidStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the bid's expiry has passed as of now. A zero
// ExpiresAt means the bid never expires.
func (b *InstallerBid) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && now.After(b.ExpiresAt)
}

// Eligible reports whether the bid can still be accepted: it must be pending
// and unexpired. Expired-but-still-pending rows are not eligible.
func (b *InstallerBid) Eligible(now time.Time) bool {
	return b.Status == BidPending && !b.Expired(now)
}

// PayableAmount returns the flat amount owed for the bid if it was accepted,
// 0 otherwise.
func (b *InstallerBid) PayableAmount() float64 {
	if b.Status != BidAccepted {
		return 0
	}
	return b.Amount
}
