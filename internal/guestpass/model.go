package guestpass

import "time"

// CodePrefix is printed on trial credentials: GP-000007.
const CodePrefix = "GP-"

// GuestPass is a single-use trial credential, not linked to a member.
type GuestPass struct {
	ID        int64    `db:"id" json:"id"`
	Code      string   `db:"code" json:"code"`
	Name      string   `db:"name" json:"name"`
	Phone     *string  `db:"phone" json:"phone,omitempty"`
	Price     *float64 `db:"price" json:"price,omitempty"`
	CreatedAt int64    `db:"created_at" json:"created_at"`
	ExpiresAt int64    `db:"expires_at" json:"expires_at"`
	UsedAt    *int64   `db:"used_at" json:"used_at,omitempty"`
}

func (g *GuestPass) Used() bool {
	return g.UsedAt != nil
}

func (g *GuestPass) Expired(now time.Time) bool {
	return now.Unix() > g.ExpiresAt
}

// CreateParams describes a new pass. Code nil means "generate the next
// sequential GP code". ValidityDays outside [1,7] is clamped.
type CreateParams struct {
	Name         string `validate:"required"`
	Phone        *string
	Price        *float64 `validate:"omitempty,gte=0"`
	ValidityDays int
	Code         *string `validate:"omitempty,min=1"`
}
