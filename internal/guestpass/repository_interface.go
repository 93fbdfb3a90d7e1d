package guestpass

import "context"

type Repository interface {
	Insert(ctx context.Context, code, name string, phone *string, price *float64, createdAt, expiresAt int64) (*GuestPass, error)
	FindByCode(ctx context.Context, code string) (*GuestPass, error)
	MaxCodeSerial(ctx context.Context) (int64, error)
	// Consume sets used_at only if it is still null; the guarded update is
	// what makes "use once" hold under concurrent scans of the same pass.
	Consume(ctx context.Context, id, usedAt int64) (bool, error)
}
