package subscription

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/metrics"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/settings"
)

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrInvalidFreezeDays = errors.New("freeze days must be between 1 and 7")
)

type Service interface {
	Create(ctx context.Context, params CreateParams) (*Subscription, error)
	Renew(ctx context.Context, params CreateParams) (*Subscription, error)
	Cancel(ctx context.Context, subscriptionID int64) error
	Freeze(ctx context.Context, subscriptionID int64, days int) (*Freeze, error)
	ActiveForMember(ctx context.Context, memberID int64) (*Subscription, error)
	History(ctx context.Context, memberID int64) ([]Subscription, error)
}

type service struct {
	repo         Repository
	memberRepo   member.Repository
	settingsRepo settings.Repository
	validate     *validator.Validate
}

func NewService(repo Repository, memberRepo member.Repository, settingsRepo settings.Repository) Service {
	return &service{
		repo:         repo,
		memberRepo:   memberRepo,
		settingsRepo: settingsRepo,
		validate:     validator.New(),
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Subscription, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	start := time.Now()
	if params.StartDate != nil {
		start = *params.StartDate
	}
	end := AddCalendarMonths(start, params.PlanMonths)

	sub, err := s.repo.Create(ctx, params.MemberID, start.Unix(), end.Unix(), params.PlanMonths, params.AmountPaid, params.SessionsPerMonth)
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscription(strconv.Itoa(params.PlanMonths))
	return sub, nil
}

// Renew supersedes the member's current subscription, if any, and eagerly
// opens the first quota cycle of the new one.
func (s *service) Renew(ctx context.Context, params CreateParams) (*Subscription, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	m, err := s.memberRepo.GetByID(ctx, params.MemberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}

	cfg, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	cap := cfg.SessionCapFor(string(m.Gender))
	if params.SessionsPerMonth != nil && *params.SessionsPerMonth > 0 {
		cap = *params.SessionsPerMonth
	}

	now := time.Now()
	start := now
	if params.StartDate != nil {
		start = *params.StartDate
	}
	end := AddCalendarMonths(start, params.PlanMonths)

	firstCycleEnd := start.Unix() + CycleSeconds
	if firstCycleEnd > end.Unix() {
		firstCycleEnd = end.Unix()
	}

	sub, err := s.repo.Renew(ctx, params.MemberID, start.Unix(), end.Unix(), params.PlanMonths, params.AmountPaid, params.SessionsPerMonth, now.Unix(), firstCycleEnd, cap)
	if err != nil {
		return nil, err
	}

	metrics.RecordRenewal()
	metrics.RecordSubscription(strconv.Itoa(params.PlanMonths))
	return sub, nil
}

func (s *service) Cancel(ctx context.Context, subscriptionID int64) error {
	return s.repo.Cancel(ctx, subscriptionID)
}

func (s *service) Freeze(ctx context.Context, subscriptionID int64, days int) (*Freeze, error) {
	if days < 1 || days > 7 {
		return nil, ErrInvalidFreezeDays
	}

	fr, err := s.repo.Freeze(ctx, subscriptionID, days, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	metrics.RecordFreeze()
	return fr, nil
}

func (s *service) ActiveForMember(ctx context.Context, memberID int64) (*Subscription, error) {
	return s.repo.GetActiveByMember(ctx, memberID)
}

func (s *service) History(ctx context.Context, memberID int64) ([]Subscription, error) {
	return s.repo.ListByMember(ctx, memberID)
}
