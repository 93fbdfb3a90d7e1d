package quota

// Quota is the usage ledger for one ~30-day cycle of a subscription.
// Rows are created lazily, at most once per (subscription, cycle_start),
// and never deleted; they form the usage history.
type Quota struct {
	ID             int64 `db:"id" json:"id"`
	MemberID       int64 `db:"member_id" json:"member_id"`
	SubscriptionID int64 `db:"subscription_id" json:"subscription_id"`
	CycleStart     int64 `db:"cycle_start" json:"cycle_start"`
	CycleEnd       int64 `db:"cycle_end" json:"cycle_end"`
	SessionsUsed   int   `db:"sessions_used" json:"sessions_used"`
	SessionsCap    int   `db:"sessions_cap" json:"sessions_cap"`
}

// Remaining is max(0, cap - used).
func (q *Quota) Remaining() int {
	if q.SessionsUsed >= q.SessionsCap {
		return 0
	}
	return q.SessionsCap - q.SessionsUsed
}

// Exhausted reports whether the cycle has no sessions left.
func (q *Quota) Exhausted() bool {
	return q.SessionsUsed >= q.SessionsCap
}
