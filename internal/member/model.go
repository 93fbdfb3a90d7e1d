package member

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Member struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Phone     string  `db:"phone" json:"phone"`
	Gender    Gender  `db:"gender" json:"gender"`
	PhotoPath *string `db:"photo_path" json:"photo_path,omitempty"`
	Tier      string  `db:"tier" json:"tier"`
	Code      string  `db:"code" json:"code"`
	Address   *string `db:"address" json:"address,omitempty"`
	CreatedAt int64   `db:"created_at" json:"created_at"`
	UpdatedAt int64   `db:"updated_at" json:"updated_at"`
}

func (m *Member) CreatedTime() time.Time {
	return time.Unix(m.CreatedAt, 0)
}

// CreateParams describes a registration. CardCode nil means "allocate the
// next serial"; an explicit code (e.g. from bulk import) is taken as-is.
type CreateParams struct {
	Name      string  `validate:"required"`
	Phone     string  `validate:"required"`
	Gender    Gender  `validate:"required,oneof=male female"`
	CardCode  *string `validate:"omitempty,min=1"`
	PhotoPath *string
	Tier      string
	Address   *string
}

type UpdateParams struct {
	Name      string `validate:"required"`
	Phone     string `validate:"required"`
	PhotoPath *string
	Tier      string
	Address   *string
}
