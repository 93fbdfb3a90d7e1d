package settings

import "context"

type Repository interface {
	Load(ctx context.Context) (*Settings, error)
	GetInt(ctx context.Context, key string, defaultValue int) (int, error)
	SetInt(ctx context.Context, key string, value int) error
}
