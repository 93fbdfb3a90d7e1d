package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/attendance"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/guestpass"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/subscription"
)

func TestRenewalKeepsOneActiveSubscription(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	m := e.register(t, "Ahmed", "01000000010", member.GenderMale)

	first, err := e.subscriptions.Renew(ctx, subscription.CreateParams{MemberID: m.ID, PlanMonths: 1})
	require.NoError(t, err)

	// Use a session so the old cycle has history worth preserving.
	res, err := e.attendance.CheckAttendance(ctx, m.Code, attendance.MethodScan)
	require.NoError(t, err)
	require.True(t, res.Granted())

	second, err := e.subscriptions.Renew(ctx, subscription.CreateParams{MemberID: m.ID, PlanMonths: 3})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var active int
	require.NoError(t, e.db.Get(&active, "SELECT COUNT(*) FROM subscriptions WHERE member_id = ? AND is_active = 1", m.ID))
	assert.Equal(t, 1, active)

	current, err := e.subscriptions.ActiveForMember(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	// The superseded cycle was closed at renewal time with its usage intact.
	var oldCycleEnd int64
	var oldUsed int
	require.NoError(t, e.db.Get(&oldCycleEnd, "SELECT cycle_end FROM quotas WHERE subscription_id = ?", first.ID))
	require.NoError(t, e.db.Get(&oldUsed, "SELECT sessions_used FROM quotas WHERE subscription_id = ?", first.ID))
	assert.LessOrEqual(t, oldCycleEnd, time.Now().Unix())
	assert.Equal(t, 1, oldUsed)

	// The new subscription starts with a fresh, eagerly created cycle.
	var newUsed int
	require.NoError(t, e.db.Get(&newUsed, "SELECT sessions_used FROM quotas WHERE subscription_id = ?", second.ID))
	assert.Equal(t, 0, newUsed)

	history, err := e.subscriptions.History(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestGuestPassSingleUseUnderConcurrentScans(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	gp, err := e.guests.Create(ctx, guestpass.CreateParams{Name: "Walk In", ValidityDays: 1})
	require.NoError(t, err)

	const scans = 8
	results := make([]*attendance.Result, scans)
	errs := make([]error, scans)

	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.attendance.CheckAttendance(ctx, gp.Code, attendance.MethodScan)
		}(i)
	}
	wg.Wait()

	granted := 0
	for i := 0; i < scans; i++ {
		require.NoError(t, errs[i])
		if results[i].Granted() {
			granted++
			assert.Equal(t, attendance.ReasonGuestPass, results[i].Reason)
		} else {
			assert.Equal(t, attendance.ReasonGuestUsed, results[i].Reason)
		}
	}
	assert.Equal(t, 1, granted)

	// Once burned, the pass stays burned.
	res, err := e.attendance.CheckAttendance(ctx, gp.Code, attendance.MethodScan)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusDenied, res.Status)
	assert.Equal(t, attendance.ReasonGuestUsed, res.Reason)
}

func TestCardSerialBatchesAreDisjoint(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.allocator.AllocateBatch(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "GF-000001", first.First)
	assert.Equal(t, "GF-000003", first.Last)

	second, err := e.allocator.AllocateBatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, first.End+1, second.Start)
	assert.Equal(t, "GF-000004", second.First)
	assert.Equal(t, "GF-000005", second.Last)
}

func TestCardSerialSkipsImportedCodes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// A bulk import registers a member with a high explicit code; the
	// allocator must jump past it instead of reissuing lower serials.
	imported := "GF-000100"
	_, err := e.members.Register(ctx, member.CreateParams{
		Name:     "Imported",
		Phone:    "01000000020",
		Gender:   member.GenderMale,
		CardCode: &imported,
	})
	require.NoError(t, err)

	code, err := e.allocator.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GF-000101", code)
}
