package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/attendance"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/config"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/db"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/guestpass"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/logger"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/member"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/quota"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/serial"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/settings"
	"github.com/MahmoudMosalm88/gymflow-sub000/internal/subscription"
)

type app struct {
	attendance    attendance.Service
	members       member.Service
	subscriptions subscription.Service
	guests        guestpass.Service
	allocator     serial.Allocator
}

func main() {
	logger.Init()
	logger.Info("Starting GymFlow engine")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Opening database...")
	database, err := db.Connect(cfg.DatabasePath)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	logger.Info("Database opened")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	settingsRepo := settings.NewRepository(database)
	memberRepo := member.NewRepository(database)
	subRepo := subscription.NewRepository(database)
	quotaRepo := quota.NewRepository(database)
	guestRepo := guestpass.NewRepository(database)
	attendanceRepo := attendance.NewRepository(database)

	allocator := serial.NewAllocator(database)
	quotaService := quota.NewService(quotaRepo, subRepo, memberRepo, settingsRepo)

	a := &app{
		attendance:    attendance.NewService(attendanceRepo, guestRepo, memberRepo, subRepo, quotaService, settingsRepo),
		members:       member.NewService(memberRepo, allocator, cfg.PhoneCountryCode),
		subscriptions: subscription.NewService(subRepo, memberRepo, settingsRepo),
		guests:        guestpass.NewService(guestRepo),
		allocator:     allocator,
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Infof("Metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Errorf("Metrics listener stopped: %v", err)
			}
		}()
	}

	// Front-desk loop: plain lines are scanned credentials, "/" lines are
	// desk commands.
	logger.Info("Ready for scans")
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			a.runCommand(ctx, line)
			continue
		}

		res, err := a.attendance.CheckAttendance(ctx, line, attendance.MethodScan)
		if err != nil {
			logger.Errorf("Check failed: %v", err)
			continue
		}
		printResult(res)
	}
	if err := scanner.Err(); err != nil {
		logger.Fatalf("Input error: %v", err)
	}
}

func (a *app) runCommand(ctx context.Context, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/checkin":
		if len(fields) != 2 {
			fmt.Println("usage: /checkin <member-id>")
			return
		}
		res, err := a.attendance.CheckAttendance(ctx, fields[1], attendance.MethodManual)
		if err != nil {
			logger.Errorf("Check failed: %v", err)
			return
		}
		printResult(res)

	case "/renew":
		memberID, months, err := parseTwoInts(fields)
		if err != nil {
			fmt.Println("usage: /renew <member-id> <plan-months>")
			return
		}
		sub, err := a.subscriptions.Renew(ctx, subscription.CreateParams{MemberID: memberID, PlanMonths: int(months)})
		if err != nil {
			logger.Errorf("Renew failed: %v", err)
			return
		}
		fmt.Printf("renewed: subscription %d valid until %s\n", sub.ID, epochDate(sub.EndDate))

	case "/freeze":
		subID, days, err := parseTwoInts(fields)
		if err != nil {
			fmt.Println("usage: /freeze <subscription-id> <days>")
			return
		}
		fr, err := a.subscriptions.Freeze(ctx, subID, int(days))
		if err != nil {
			logger.Errorf("Freeze failed: %v", err)
			return
		}
		fmt.Printf("frozen until %s\n", epochDate(fr.EndDate))

	case "/guest":
		if len(fields) < 2 {
			fmt.Println("usage: /guest <name> [days]")
			return
		}
		days := 1
		if len(fields) > 2 {
			days, _ = strconv.Atoi(fields[2])
		}
		gp, err := a.guests.Create(ctx, guestpass.CreateParams{Name: fields[1], ValidityDays: days})
		if err != nil {
			logger.Errorf("Guest pass failed: %v", err)
			return
		}
		fmt.Printf("guest pass %s valid until %s\n", gp.Code, epochDate(gp.ExpiresAt))

	case "/cards":
		if len(fields) != 2 {
			fmt.Println("usage: /cards <count>")
			return
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("usage: /cards <count>")
			return
		}
		batch, err := a.allocator.AllocateBatch(ctx, count)
		if err != nil {
			logger.Errorf("Allocation failed: %v", err)
			return
		}
		fmt.Printf("allocated %s .. %s\n", batch.First, batch.Last)

	default:
		fmt.Println("commands: /checkin /renew /freeze /guest /cards")
	}
}

func printResult(res *attendance.Result) {
	switch res.Status {
	case attendance.StatusAllowed, attendance.StatusWarning:
		name := "guest"
		if res.Member != nil {
			name = res.Member.Name
		} else if res.GuestPass != nil {
			name = res.GuestPass.Name
		}
		fmt.Printf("%s: %s (%s)\n", strings.ToUpper(string(res.Status)), name, res.Reason)
		for _, w := range res.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	case attendance.StatusDenied:
		fmt.Printf("DENIED: %s\n", res.Reason)
	case attendance.StatusIgnored:
		fmt.Printf("ignored (%s)\n", res.Reason)
	}
}

func parseTwoInts(fields []string) (int64, int64, error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("expected two arguments")
	}
	a, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func epochDate(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02")
}
