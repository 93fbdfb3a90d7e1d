package quota

import "context"

type Repository interface {
	// GetOrCreate materializes the quota row for a cycle, idempotently:
	// concurrent calls for the same (subscription, cycleStart) all land on
	// the single row.
	GetOrCreate(ctx context.Context, memberID, subscriptionID, cycleStart, cycleEnd int64, sessionsCap int) (*Quota, error)
	GetByCycle(ctx context.Context, subscriptionID, cycleStart int64) (*Quota, error)
	Increment(ctx context.Context, quotaID int64) error
	ListBySubscription(ctx context.Context, subscriptionID int64) ([]Quota, error)
}
