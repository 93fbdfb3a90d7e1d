package attendance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/guestpass"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/metrics"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/quota"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/settings"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/subscription"
)

type Service interface {
	// CheckAttendance decides whether the presented credential gets in.
	// Negative outcomes (expired, frozen, no sessions...) are Result
	// variants, not errors; only store failures return an error.
	CheckAttendance(ctx context.Context, credential string, method Method) (*Result, error)
	History(ctx context.Context, memberID int64, limit int) ([]Log, error)
}

type service struct {
	repo         Repository
	guestRepo    guestpass.Repository
	memberRepo   member.Repository
	subRepo      subscription.Repository
	quotaService quota.Service
	settingsRepo settings.Repository
}

func NewService(
	repo Repository,
	guestRepo guestpass.Repository,
	memberRepo member.Repository,
	subRepo subscription.Repository,
	quotaService quota.Service,
	settingsRepo settings.Repository,
) Service {
	return &service{
		repo:         repo,
		guestRepo:    guestRepo,
		memberRepo:   memberRepo,
		subRepo:      subRepo,
		quotaService: quotaService,
		settingsRepo: settingsRepo,
	}
}

func (s *service) CheckAttendance(ctx context.Context, credential string, method Method) (*Result, error) {
	now := time.Now()

	// The normalized credential is what gets logged and what the cooldown
	// guard keys on, so whitespace cannot bypass either.
	credential = strings.TrimSpace(credential)

	cfg, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Guest pass: short-circuits everything else.
	gp, err := s.guestRepo.FindByCode(ctx, credential)
	if err != nil {
		return nil, err
	}
	if gp != nil {
		return s.decideGuest(ctx, gp, credential, method, now)
	}

	// 2. Cooldown: a successful scan of the same value moments ago means
	// this is double-scan noise, not a visit. No log row.
	if cfg.ScanCooldownSeconds > 0 {
		since := now.Unix() - int64(cfg.ScanCooldownSeconds)
		recent, err := s.repo.HasRecentSuccess(ctx, credential, since)
		if err != nil {
			return nil, err
		}
		if recent {
			return s.ignore(ReasonCooldown), nil
		}
	}

	// 3. Member resolution: scans carry card codes, manual entries carry
	// member ids; each falls back to the other.
	m, err := s.resolveMember(ctx, credential, method)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return s.deny(ctx, nil, credential, method, now, ReasonUnknownQR, &Result{})
	}

	// 4. Same-day dedupe: one successful check-in per local calendar day.
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	already, err := s.repo.HasSuccessSince(ctx, m.ID, dayStart.Unix())
	if err != nil {
		return nil, err
	}
	if already {
		res := s.ignore(ReasonAlreadyToday)
		res.Member = m
		return res, nil
	}

	// 5. Subscription validity.
	sub, err := s.subRepo.GetActiveByMember(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return s.deny(ctx, m, credential, method, now, ReasonExpired, &Result{Member: m})
	}
	if !sub.Started(now) {
		return s.deny(ctx, m, credential, method, now, ReasonNotStarted, &Result{Member: m, Subscription: sub})
	}
	if sub.Expired(now) {
		return s.deny(ctx, m, credential, method, now, ReasonExpired, &Result{Member: m, Subscription: sub})
	}

	// 6. Freeze.
	fr, err := s.subRepo.ActiveFreeze(ctx, sub.ID, now.Unix())
	if err != nil {
		return nil, err
	}
	if fr != nil {
		return s.deny(ctx, m, credential, method, now, ReasonFrozen, &Result{Member: m, Subscription: sub, Freeze: fr})
	}

	// 7. Quota materialization.
	q, err := s.quotaService.GetOrCreateCurrentQuota(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return s.deny(ctx, m, credential, method, now, ReasonNoQuota, &Result{Member: m, Subscription: sub})
	}

	// 8. Capacity.
	if q.Exhausted() {
		return s.deny(ctx, m, credential, method, now, ReasonNoSessions, &Result{Member: m, Subscription: sub, Quota: q})
	}

	// 9. Warnings: computed against sessions remaining after this visit.
	var warnings []string
	daysLeft := sub.DaysRemaining(now)
	if daysLeft <= cfg.WarningDaysBeforeExpiry {
		warnings = append(warnings, fmt.Sprintf("subscription expires in %d days", daysLeft))
	}
	remainingAfter := q.SessionsCap - q.SessionsUsed - 1
	if remainingAfter <= cfg.WarningSessionsRemaining {
		warnings = append(warnings, fmt.Sprintf("%d sessions remaining after this visit", remainingAfter))
	}

	// 10. Consume a session and log the decision.
	if err := s.quotaService.IncrementSessionsUsed(ctx, q.ID); err != nil {
		return nil, err
	}
	q.SessionsUsed++

	status := StatusAllowed
	if len(warnings) > 0 {
		status = StatusWarning
	}
	if _, err := s.repo.InsertLog(ctx, &m.ID, credential, method, now.Unix(), status, ReasonOK); err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(status), ReasonOK)
	return &Result{
		Status:       status,
		Reason:       ReasonOK,
		Member:       m,
		Subscription: sub,
		Quota:        q,
		Warnings:     warnings,
	}, nil
}

func (s *service) History(ctx context.Context, memberID int64, limit int) ([]Log, error) {
	return s.repo.ListByMember(ctx, memberID, limit)
}

func (s *service) decideGuest(ctx context.Context, gp *guestpass.GuestPass, credential string, method Method, now time.Time) (*Result, error) {
	if gp.Used() {
		return s.deny(ctx, nil, credential, method, now, ReasonGuestUsed, &Result{GuestPass: gp})
	}
	if gp.Expired(now) {
		return s.deny(ctx, nil, credential, method, now, ReasonGuestExpired, &Result{GuestPass: gp})
	}

	usedAt := now.Unix()
	consumed, err := s.guestRepo.Consume(ctx, gp.ID, usedAt)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Lost the race against a concurrent scan of the same pass.
		return s.deny(ctx, nil, credential, method, now, ReasonGuestUsed, &Result{GuestPass: gp})
	}
	gp.UsedAt = &usedAt

	if _, err := s.repo.InsertLog(ctx, nil, credential, method, now.Unix(), StatusAllowed, ReasonGuestPass); err != nil {
		return nil, err
	}
	metrics.RecordDecision(string(StatusAllowed), ReasonGuestPass)
	metrics.RecordGuestPass("consumed")

	return &Result{Status: StatusAllowed, Reason: ReasonGuestPass, GuestPass: gp}, nil
}

func (s *service) resolveMember(ctx context.Context, credential string, method Method) (*member.Member, error) {
	byID := func() (*member.Member, error) {
		id, err := strconv.ParseInt(credential, 10, 64)
		if err != nil {
			return nil, nil
		}
		return s.memberRepo.GetByID(ctx, id)
	}

	var m *member.Member
	var err error
	if method == MethodManual {
		m, err = byID()
		if err != nil {
			return nil, err
		}
		if m == nil {
			m, err = s.memberRepo.GetByCode(ctx, credential)
		}
	} else {
		m, err = s.memberRepo.GetByCode(ctx, credential)
		if err != nil {
			return nil, err
		}
		if m == nil {
			m, err = byID()
		}
	}
	return m, err
}

// deny writes the audit row and finishes the result. memberID is nil for
// unknown and guest scans.
func (s *service) deny(ctx context.Context, m *member.Member, credential string, method Method, now time.Time, reason string, res *Result) (*Result, error) {
	var memberID *int64
	if m != nil {
		memberID = &m.ID
	}
	if _, err := s.repo.InsertLog(ctx, memberID, credential, method, now.Unix(), StatusDenied, reason); err != nil {
		return nil, err
	}
	metrics.RecordDecision(string(StatusDenied), reason)

	res.Status = StatusDenied
	res.Reason = reason
	return res, nil
}

func (s *service) ignore(reason string) *Result {
	metrics.RecordDecision(string(StatusIgnored), reason)
	return &Result{Status: StatusIgnored, Reason: reason}
}
