package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/config"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	appHTTP "github.com/socialcare-homes/rota-backend-go/internal/handler/http"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/cron"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/email"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/jwt"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/lock"
	"github.com/socialcare-homes/rota-backend-go/internal/repository/postgresql"
	leaveService "github.com/socialcare-homes/rota-backend-go/internal/service/leave"
	payrollService "github.com/socialcare-homes/rota-backend-go/internal/service/payroll"
	shiftService "github.com/socialcare-homes/rota-backend-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	setupLogger(cfg.App)

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	// Repositories
	staffRepo := postgresql.NewStaffRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	activityRepo := postgresql.NewActivityLogRepository(db)
	transactor := postgresql.NewTransactor(db)

	// Run serialization: Redis when configured so replicas share the lock.
	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Redis.Enabled() {
		rdb, err := lock.NewRedisClient(ctx, lock.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
	}

	notifier, err := email.NewNotifier(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email notifier:", err)
	}

	ratePolicyName, err := payroll.ParseRatePolicyName(cfg.Payroll.RatePolicy)
	if err != nil {
		log.Fatal(err)
	}
	leavePolicy, err := leave.PolicyByVersion(cfg.Leave.PolicyVersion)
	if err != nil {
		log.Fatal(err)
	}

	// Services
	payrollSvc := payrollService.NewPayrollService(staffRepo, shiftRepo, activityRepo, locker, payroll.Settings{
		RatePolicy: payroll.RatePolicy{
			Name:          ratePolicyName,
			FixedEnhanced: cfg.Payroll.FixedEnhanced,
			FixedNight:    cfg.Payroll.FixedNight,
		},
		ExcludedStaff: cfg.Payroll.ExcludedStaff,
	})
	leaveSvc := leaveService.NewLeaveService(transactor, balanceRepo, staffRepo, activityRepo, leaveService.NewAccrualCalculator(leavePolicy))
	shiftSvc := shiftService.NewShiftService(transactor, shiftRepo, activityRepo)

	// Scheduled jobs
	scheduler := cron.NewScheduler()
	if cfg.Cron.Enabled {
		cron.NewShiftJobs(shiftSvc).RegisterJobs(scheduler)
		cron.NewPayrollJobs(payrollSvc, leaveSvc, activityRepo, notifier, locker, cfg.Cron.AdminEmail).RegisterJobs(scheduler)
		scheduler.Start()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Env: cfg.App.Env, AllowedOrigins: cfg.App.AllowedOrigins},
		JWTService,
		appHTTP.Handlers{
			Payroll:  appHTTP.NewPayrollHandler(payrollSvc, notifier, cfg.Cron.AdminEmail),
			Leave:    appHTTP.NewLeaveHandler(leaveSvc),
			Shift:    appHTTP.NewShiftHandler(shiftSvc),
			Activity: appHTTP.NewActivityHandler(activityRepo),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "rate_policy", ratePolicyName, "leave_policy", leavePolicy.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if cfg.Cron.Enabled {
		scheduler.Stop()
	}
}

func setupLogger(app config.AppConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if app.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
