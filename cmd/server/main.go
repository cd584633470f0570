package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility/metrics"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility/sink"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility/store"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/platform/config"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/platform/httpserver"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/platform/logger"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/platform/postgres"
	platformredis "github.com/Alexandre220990/ProfitumMVP-sub006/internal/platform/redis"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/simulation"
	httptransport "github.com/Alexandre220990/ProfitumMVP-sub006/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)
	m := metrics.New()

	ctx := context.Background()

	var (
		ruleSource   eligibility.RuleSource
		catalog      eligibility.ProductCatalog
		answerStore  eligibility.AnswerStore
		answerWriter simulation.AnswerWriter
		resultSink   eligibility.ResultSink
		resultReader simulation.ResultReader
		sessions     simulation.SessionStore
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("connecting to postgres failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := store.NewPostgres(db)
		ruleSource = pg
		catalog = pg
		answerStore = pg
		answerWriter = pg
		resultSink = pg
		resultReader = pg
		sessions = simulation.NewPostgresSessionStore(db)
		log.Info("using postgres stores")
	} else {
		rules := store.NewMemoryRuleSource()
		answers := store.NewMemoryAnswerStore()
		results := store.NewMemoryResultStore()
		ruleSource = rules
		catalog = store.NewMemoryCatalog()
		answerStore = answers
		answerWriter = answers
		resultSink = results
		resultReader = results
		sessions = simulation.NewMemorySessionStore()
		log.Warn("no DATABASE_URL set, using in-memory stores")
	}

	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("connecting to redis failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		redisAnswers := store.NewRedisAnswerStore(client)
		answerStore = redisAnswers
		answerWriter = redisAnswers
		log.Info("using redis answer store")
	}

	var policy eligibility.Policy
	switch cfg.Policy {
	case "all_rules":
		policy = eligibility.AllRulesPolicy{}
	default:
		policy = eligibility.ThresholdPolicy{Threshold: cfg.Threshold}
	}

	engine := eligibility.NewEngine(ruleSource, catalog, policy,
		eligibility.WithLogger(log),
		eligibility.WithMetrics(m),
	)

	var changeSink eligibility.ChangeSink = sink.NewLog(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := sink.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connecting to kafka failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		changeSink = kafka
		log.Info("publishing score changes to kafka", "topic", cfg.KafkaTopic)
	}

	serializer := eligibility.NewSerializer(engine, answerStore, resultSink, changeSink,
		eligibility.WithSerializerLogger(log),
		eligibility.WithSerializerMetrics(m),
		eligibility.WithQueueLimit(cfg.QueueLimit),
	)

	service := simulation.NewService(sessions, answerStore, answerWriter, serializer, resultReader, log)

	router := httptransport.NewRouter(
		httptransport.NewSimulationHandler(service, log),
		httptransport.NewAdminHandler(engine, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting eligibility server", "addr", cfg.Addr, "policy", policy.Name())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
