package subscription

import "context"

type Repository interface {
	Create(ctx context.Context, memberID, startDate, endDate int64, planMonths int, amountPaid *float64, sessionsPerMonth *int) (*Subscription, error)
	Renew(ctx context.Context, memberID, startDate, endDate int64, planMonths int, amountPaid *float64, sessionsPerMonth *int, now, firstCycleEnd int64, sessionsCap int) (*Subscription, error)
	Cancel(ctx context.Context, id int64) error
	Freeze(ctx context.Context, subscriptionID int64, days int, now int64) (*Freeze, error)
	GetByID(ctx context.Context, id int64) (*Subscription, error)
	GetActiveByMember(ctx context.Context, memberID int64) (*Subscription, error)
	ActiveFreeze(ctx context.Context, subscriptionID, now int64) (*Freeze, error)
	ListByMember(ctx context.Context, memberID int64) ([]Subscription, error)
}
