// main wires stores, services and transports together and runs the HTTP
// server next to the audit worker. Business logic lives in the internal
// feature packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	authhandler "skillaudit/internal/auth/handler"
	authservice "skillaudit/internal/auth/service"
	authstore "skillaudit/internal/auth/store"
	"skillaudit/internal/auth/token"
	centerhandler "skillaudit/internal/center/handler"
	centerstore "skillaudit/internal/center/store"
	"skillaudit/internal/notify"
	"skillaudit/internal/platform/config"
	"skillaudit/internal/platform/httpserver"
	"skillaudit/internal/platform/logger"
	"skillaudit/internal/platform/postgres"
	platformredis "skillaudit/internal/platform/redis"
	reporthandler "skillaudit/internal/report/handler"
	reportmetrics "skillaudit/internal/report/metrics"
	reportservice "skillaudit/internal/report/service"
	reportstore "skillaudit/internal/report/store"
	transporthttp "skillaudit/internal/transport/http"
	"skillaudit/pkg/platform/audit"
	auditpublisher "skillaudit/pkg/platform/audit/publisher"
	auditkafka "skillaudit/pkg/platform/audit/publishers/kafka"
	auditmemory "skillaudit/pkg/platform/audit/store/memory"
	auditpostgres "skillaudit/pkg/platform/audit/store/postgres"
	auditworker "skillaudit/pkg/platform/audit/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	// Persistence: PostgreSQL when configured, in-memory otherwise.
	var (
		reports    reportstore.ReportStore
		centers    centerstore.CenterStore
		users      authstore.UserStore
		trail      audit.Store
		remarkLock reportstore.RemarkLock
	)
	db, err := openDatabase(cfg.PostgresDSN)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	if db != nil {
		reports = reportstore.NewPostgres(db)
		centers = centerstore.NewPostgres(db)
		users = authstore.NewPostgres(db)
		trail = auditpostgres.New(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		reports = reportstore.NewInMemory()
		centers = centerstore.NewInMemory()
		users = authstore.NewInMemory()
		trail = auditmemory.New()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		remarkLock = reportstore.NewRedisRemarkLock(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, remark lock is process-local")
		remarkLock = reportstore.NewInMemoryRemarkLock()
	}

	// Audit pipeline: publisher -> worker -> store (+ optional kafka sink).
	publisher := auditpublisher.New(cfg.AuditBuffer, log)
	var sinks []audit.Sink
	if cfg.KafkaBrokers != "" {
		sink, err := auditkafka.New(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}
	worker := auditworker.New(trail, publisher.Inbox(), log, sinks...)

	// Services.
	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	verifier := token.NewMiddlewareAdapter(tokens)
	authSvc := authservice.New(users, tokens, publisher, log)

	var mailer notify.Mailer
	if cfg.SendGridKey != "" {
		mailer = notify.NewSendGridMailer(cfg.SendGridKey, cfg.MailName, cfg.MailFrom)
	} else {
		log.Warn("SENDGRID_API_KEY not set, emails go to the log")
		mailer = notify.NewConsoleMailer(log)
	}
	notifier := notify.NewService(centers, mailer, publisher, log)

	reportSvc := reportservice.New(reports, centers, remarkLock, reportmetrics.New(), publisher, log)

	router := transporthttp.NewRouter(transporthttp.Deps{
		Auth:    authhandler.New(authSvc, verifier, log),
		Centers: centerhandler.New(centers, verifier, log),
		Reports: reporthandler.New(reportSvc, notifier, trail, verifier, log),
		DB:      db,
		Logger:  log,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting skillaudit", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func openDatabase(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, nil
	}
	return postgres.Open(dsn)
}
