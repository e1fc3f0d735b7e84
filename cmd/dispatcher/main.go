package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/syedrazahussain/celebratemate/internal/api"
	"github.com/syedrazahussain/celebratemate/internal/cache"
	"github.com/syedrazahussain/celebratemate/internal/channel"
	"github.com/syedrazahussain/celebratemate/internal/config"
	"github.com/syedrazahussain/celebratemate/internal/db"
	"github.com/syedrazahussain/celebratemate/internal/dispatch"
	"github.com/syedrazahussain/celebratemate/internal/repo"
	"github.com/syedrazahussain/celebratemate/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("dispatcher starting (addr=%s, interval=%s, tz=%s, sms=%v, email=%s, redis=%v)",
		cfg.Server.Address,
		cfg.Scheduler.Interval,
		cfg.Scheduler.Timezone,
		cfg.SMS.Enabled,
		cfg.Email.Backend,
		cfg.Redis.Enabled,
	)

	database, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer database.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, database); err != nil {
		cancelMigrate()
		log.Fatalf("run migrations: %v", err)
	}
	cancelMigrate()

	var receipts cache.ReceiptCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		receipts = cache.NewRedisReceipts(rdb, cfg.Redis.TTL)
	}

	eventRepo := repo.NewPostgresEventRepo(database)

	dispatcher, err := dispatch.New(dispatch.Options{
		Repo:        eventRepo,
		SMS:         channel.NewSMSSender(cfg.SMS),
		Email:       channel.NewEmailSender(cfg.Email),
		Receipts:    receipts,
		Location:    cfg.Scheduler.Location,
		Lookback:    cfg.Scheduler.Lookback,
		FromAddress: cfg.Email.FromAddress,
		TickTimeout: cfg.Scheduler.Interval,
	})
	if err != nil {
		log.Fatalf("build dispatcher: %v", err)
	}

	sched, err := scheduler.New(cfg.Scheduler.Interval, dispatcher.RunOnce)
	if err != nil {
		log.Fatalf("build scheduler: %v", err)
	}
	sched.Start()

	handler := api.NewHandler(sched, eventRepo)
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           loggingMiddleware(api.Router(handler)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	slog.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "err", err)
	}

	sched.Stop()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
