package attendance

import (
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/guestpass"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/quota"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/subscription"
)

type Method string

const (
	MethodScan   Method = "scan"
	MethodManual Method = "manual"
)

type Status string

const (
	StatusAllowed Status = "allowed"
	StatusWarning Status = "warning"
	StatusDenied  Status = "denied"
	StatusIgnored Status = "ignored"
)

// Reason codes attached to decisions and audit log rows.
const (
	ReasonOK           = "ok"
	ReasonGuestPass    = "guest_pass"
	ReasonGuestUsed    = "guest_used"
	ReasonGuestExpired = "guest_expired"
	ReasonCooldown     = "cooldown"
	ReasonUnknownQR    = "unknown_qr"
	ReasonAlreadyToday = "already_today"
	ReasonExpired      = "expired"
	ReasonNotStarted   = "not_started"
	ReasonFrozen       = "frozen"
	ReasonNoQuota      = "no_quota"
	ReasonNoSessions   = "no_sessions"
)

// Log is one append-only audit record. Rows are write-once; the engine
// never updates or deletes them.
type Log struct {
	ID           int64   `db:"id" json:"id"`
	MemberID     *int64  `db:"member_id" json:"member_id,omitempty"`
	ScannedValue string  `db:"scanned_value" json:"scanned_value"`
	Method       Method  `db:"method" json:"method"`
	Timestamp    int64   `db:"timestamp" json:"timestamp"`
	Status       Status  `db:"status" json:"status"`
	Reason       *string `db:"reason" json:"reason,omitempty"`
}

// Result is the outcome of one attendance check, carrying whatever records
// matched along the way so the shell can render the decision.
type Result struct {
	Status       Status                     `json:"status"`
	Reason       string                     `json:"reason"`
	Member       *member.Member             `json:"member,omitempty"`
	Subscription *subscription.Subscription `json:"subscription,omitempty"`
	Quota        *quota.Quota               `json:"quota,omitempty"`
	GuestPass    *guestpass.GuestPass       `json:"guest_pass,omitempty"`
	Freeze       *subscription.Freeze       `json:"freeze,omitempty"`
	Warnings     []string                   `json:"warnings,omitempty"`
}

// Granted reports whether the person gets in.
func (r *Result) Granted() bool {
	return r.Status == StatusAllowed || r.Status == StatusWarning
}
