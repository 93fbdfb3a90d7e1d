package quota

import (
	"context"
	"time"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/metrics"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/settings"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/subscription"
)

type Service interface {
	// GetOrCreateCurrentQuota returns the quota for the member's current
	// billing cycle, materializing the row on first use. Nil (no error)
	// when the member has no active subscription covering now.
	GetOrCreateCurrentQuota(ctx context.Context, memberID int64) (*Quota, error)
	IncrementSessionsUsed(ctx context.Context, quotaID int64) error
	SessionsRemaining(ctx context.Context, memberID int64) (int, error)
}

type service struct {
	repo         Repository
	subRepo      subscription.Repository
	memberRepo   member.Repository
	settingsRepo settings.Repository
}

func NewService(repo Repository, subRepo subscription.Repository, memberRepo member.Repository, settingsRepo settings.Repository) Service {
	return &service{
		repo:         repo,
		subRepo:      subRepo,
		memberRepo:   memberRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *service) GetOrCreateCurrentQuota(ctx context.Context, memberID int64) (*Quota, error) {
	sub, err := s.subRepo.GetActiveByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if sub == nil || !sub.Started(now) || sub.Expired(now) {
		return nil, nil
	}

	cycleStart, cycleEnd := currentCycle(sub, now)

	// Fast path: the row usually exists already.
	q, err := s.repo.GetByCycle(ctx, sub.ID, cycleStart)
	if err != nil {
		return nil, err
	}
	if q != nil {
		return q, nil
	}

	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	cfg, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	cap := cfg.SessionCapFor(string(m.Gender))
	if sub.SessionsPerMonth != nil && *sub.SessionsPerMonth > 0 {
		cap = *sub.SessionsPerMonth
	}

	return s.repo.GetOrCreate(ctx, memberID, sub.ID, cycleStart, cycleEnd, cap)
}

func (s *service) IncrementSessionsUsed(ctx context.Context, quotaID int64) error {
	if err := s.repo.Increment(ctx, quotaID); err != nil {
		return err
	}
	metrics.RecordSessionConsumed()
	return nil
}

// SessionsRemaining reports max(0, cap - used) for the current cycle, or 0
// when no quota row exists for it yet.
func (s *service) SessionsRemaining(ctx context.Context, memberID int64) (int, error) {
	sub, err := s.subRepo.GetActiveByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	if sub == nil || !sub.Started(now) || sub.Expired(now) {
		return 0, nil
	}

	cycleStart, _ := currentCycle(sub, now)
	q, err := s.repo.GetByCycle(ctx, sub.ID, cycleStart)
	if err != nil {
		return 0, err
	}
	if q == nil {
		return 0, nil
	}
	return q.Remaining(), nil
}

// currentCycle derives the 30-day window containing now. The final partial
// cycle is capped at the subscription's end date.
func currentCycle(sub *subscription.Subscription, now time.Time) (int64, int64) {
	index := (now.Unix() - sub.StartDate) / subscription.CycleSeconds
	start := sub.StartDate + index*subscription.CycleSeconds
	end := start + subscription.CycleSeconds
	if end > sub.EndDate {
		end = sub.EndDate
	}
	return start, end
}
