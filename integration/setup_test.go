package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/attendance"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/db"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/guestpass"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/quota"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/serial"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/settings"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/subscription"
)

// engine wires the full stack onto a throwaway database file, the same way
// cmd/app does against the real one.
type engine struct {
	db            *sqlx.DB
	settings      settings.Repository
	memberRepo    member.Repository
	subRepo       subscription.Repository
	members       member.Service
	subscriptions subscription.Service
	quotas        quota.Service
	guests        guestpass.Service
	attendance    attendance.Service
	allocator     serial.Allocator
}

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	path := filepath.Join(t.TempDir(), "gymflow.db")
	database, err := db.Connect(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database, "../migrations"))

	settingsRepo := settings.NewRepository(database)
	memberRepo := member.NewRepository(database)
	subRepo := subscription.NewRepository(database)
	quotaRepo := quota.NewRepository(database)
	guestRepo := guestpass.NewRepository(database)
	attendanceRepo := attendance.NewRepository(database)

	allocator := serial.NewAllocator(database)
	quotaService := quota.NewService(quotaRepo, subRepo, memberRepo, settingsRepo)

	return &engine{
		db:            database,
		settings:      settingsRepo,
		memberRepo:    memberRepo,
		subRepo:       subRepo,
		members:       member.NewService(memberRepo, allocator, "20"),
		subscriptions: subscription.NewService(subRepo, memberRepo, settingsRepo),
		quotas:        quotaService,
		guests:        guestpass.NewService(guestRepo),
		attendance:    attendance.NewService(attendanceRepo, guestRepo, memberRepo, subRepo, quotaService, settingsRepo),
		allocator:     allocator,
	}
}

func (e *engine) register(t *testing.T, name, phone string, gender member.Gender) *member.Member {
	t.Helper()
	m, err := e.members.Register(context.Background(), member.CreateParams{
		Name:   name,
		Phone:  phone,
		Gender: gender,
	})
	require.NoError(t, err)
	return m
}

func (e *engine) countLogs(t *testing.T, scannedValue string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, "SELECT COUNT(*) FROM attendance_logs WHERE scanned_value = ?", scannedValue))
	return n
}
