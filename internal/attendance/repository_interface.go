package attendance

import "context"

type Repository interface {
	InsertLog(ctx context.Context, memberID *int64, scannedValue string, method Method, timestamp int64, status Status, reason string) (*Log, error)
	// HasRecentSuccess reports whether the same scanned value produced an
	// allowed/warning outcome at or after since (the cooldown guard).
	HasRecentSuccess(ctx context.Context, scannedValue string, since int64) (bool, error)
	// HasSuccessSince reports whether the member already got in at or
	// after the given instant (the same-day dedupe guard).
	HasSuccessSince(ctx context.Context, memberID, since int64) (bool, error)
	ListByMember(ctx context.Context, memberID int64, limit int) ([]Log, error)
}
