package member

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/serial"
)

var ErrMemberNotFound = errors.New("member not found")

type Service interface {
	Register(ctx context.Context, params CreateParams) (*Member, error)
	UpdateProfile(ctx context.Context, id int64, params UpdateParams) (*Member, error)
	ReplaceCard(ctx context.Context, id int64, newCode string) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Member, error)
	FindByCode(ctx context.Context, code string) (*Member, error)
	FindByPhone(ctx context.Context, rawPhone string) (*Member, error)
}

type service struct {
	repo        Repository
	allocator   serial.Allocator
	countryCode string
	validate    *validator.Validate
}

func NewService(repo Repository, allocator serial.Allocator, countryCode string) Service {
	return &service{
		repo:        repo,
		allocator:   allocator,
		countryCode: countryCode,
		validate:    validator.New(),
	}
}

func (s *service) Register(ctx context.Context, params CreateParams) (*Member, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(params.Phone, s.countryCode)
	if err != nil {
		return nil, err
	}

	code := ""
	if params.CardCode != nil {
		code = *params.CardCode
	} else {
		code, err = s.allocator.Next(ctx)
		if err != nil {
			return nil, err
		}
	}

	return s.repo.Create(ctx, params, phone, code)
}

func (s *service) UpdateProfile(ctx context.Context, id int64, params UpdateParams) (*Member, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(params.Phone, s.countryCode)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.Update(ctx, id, params, phone)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// ReplaceCard swaps the credential printed on a member's card. A duplicate
// code surfaces as the store's uniqueness violation, unswallowed.
func (s *service) ReplaceCard(ctx context.Context, id int64, newCode string) error {
	if newCode == "" {
		return errors.New("card code must not be empty")
	}
	return s.repo.ReplaceCode(ctx, id, newCode)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) FindByID(ctx context.Context, id int64) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByCode(ctx context.Context, code string) (*Member, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *service) FindByPhone(ctx context.Context, rawPhone string) (*Member, error) {
	phone, err := NormalizePhone(rawPhone, s.countryCode)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByPhone(ctx, phone)
}
