package guestpass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/metrics"
)

var ErrPassNotFound = errors.New("guest pass not found")

type Service interface {
	Create(ctx context.Context, params CreateParams) (*GuestPass, error)
	Consume(ctx context.Context, id int64) (bool, error)
	FindByCode(ctx context.Context, code string) (*GuestPass, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) Service {
	return &service{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*GuestPass, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	days := params.ValidityDays
	if days < 1 {
		days = 1
	}
	if days > 7 {
		days = 7
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour).Unix()

	if params.Code != nil {
		gp, err := s.repo.Insert(ctx, *params.Code, params.Name, params.Phone, params.Price, now.Unix(), expiresAt)
		if err != nil {
			return nil, err
		}
		metrics.RecordGuestPass("issued")
		return gp, nil
	}

	serial, err := s.repo.MaxCodeSerial(ctx)
	if err != nil {
		return nil, err
	}

	// Another caller may grab the same serial between the scan and the
	// insert; on a code collision, step past it and try again.
	for serial++; ; serial++ {
		code := fmt.Sprintf("%s%06d", CodePrefix, serial)
		gp, err := s.repo.Insert(ctx, code, params.Name, params.Phone, params.Price, now.Unix(), expiresAt)
		if err == nil {
			metrics.RecordGuestPass("issued")
			return gp, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
	}
}

func (s *service) Consume(ctx context.Context, id int64) (bool, error) {
	consumed, err := s.repo.Consume(ctx, id, time.Now().Unix())
	if err != nil {
		return false, err
	}
	if consumed {
		metrics.RecordGuestPass("consumed")
	}
	return consumed, nil
}

func (s *service) FindByCode(ctx context.Context, code string) (*GuestPass, error) {
	return s.repo.FindByCode(ctx, code)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
