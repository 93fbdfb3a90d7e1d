package member

import "context"

type Repository interface {
	Create(ctx context.Context, params CreateParams, normalizedPhone, code string) (*Member, error)
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByCode(ctx context.Context, code string) (*Member, error)
	GetByPhone(ctx context.Context, phone string) (*Member, error)
	Update(ctx context.Context, id int64, params UpdateParams, normalizedPhone string) (*Member, error)
	ReplaceCode(ctx context.Context, id int64, code string) error
	Delete(ctx context.Context, id int64) error
	MaxCardSerial(ctx context.Context) (int64, error)
}
