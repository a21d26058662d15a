package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	configs "grading_service/config"
	"grading_service/internal/cache"
	"grading_service/internal/grading"
	"grading_service/internal/regrade"
	"grading_service/internal/repository"
	"grading_service/internal/server/httpapi"
	"grading_service/internal/service"
	"grading_service/pkg/db"
	"grading_service/pkg/kafka"
	"grading_service/pkg/logger"
	"grading_service/pkg/retry"
)

// newDispatcher guards grade notifications with a breaker that only trips
// on broker failures. A student who cannot be reached never holds back
// the others.
func newDispatcher(cfg configs.GradingConfig, notifier service.Notifier, log *logger.Logger) *service.Dispatcher {
	breaker := retry.NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerReset, kafka.IsBrokerFailure)
	return service.NewDispatcher(notifier, cfg.NotifyConcurrency, breaker, log)
}

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.NewPostgres(db.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	store := repository.NewStore(
		repository.NewTopicRepository(pg.DB()),
		repository.NewSubmissionRepository(pg.DB()),
		log,
	)
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		store.WithCache(cache.NewRedisCache(rdb), cfg.Redis.TTL)
	}

	alphabet, err := grading.NewAlphabet(cfg.Grading.Alphabet, cfg.Grading.VoidMarker[0])
	if err != nil {
		log.Fatalf("Invalid grading alphabet: %v", err)
	}
	keyCodec := grading.NewKeyCodec(alphabet)
	submissionCodec := grading.NewSubmissionCodec(alphabet)
	grader := grading.NewGrader(grading.DeadlinePolicy{PenaltyPercent: cfg.Grading.LatePenaltyPercent})

	producer, err := kafka.NewProducer(kafka.Config{
		Brokers:      cfg.Kafka.Brokers,
		BatchTimeout: cfg.Kafka.BatchTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create Kafka producer: %v", err)
	}
	defer producer.Close()

	orchestrator := regrade.NewOrchestrator(store, submissionCodec, grader, regrade.Config{
		WorkerPoolSize:      cfg.Grading.WorkerPoolSize,
		WriteRetries:        cfg.Grading.WriteRetries,
		WriteRetryBaseDelay: cfg.Grading.WriteRetryBaseDelay,
	}, log)

	dispatcher := newDispatcher(cfg.Grading, kafka.NewGradeEventPublisher(producer, cfg.Kafka.GradeEventsTopic), log)

	topicService := service.NewTopicService(store, keyCodec, log)
	answerKeyService := service.NewAnswerKeyService(store, keyCodec, orchestrator, dispatcher, log)
	submissionService := service.NewSubmissionService(store, keyCodec, submissionCodec, grader, log)

	if cfg.Worker.Enabled {
		resultsService := service.NewResultsService(
			store,
			keyCodec,
			submissionCodec,
			grader,
			kafka.NewResultsPublisher(producer, cfg.Kafka.ResultsTopic),
			log,
		)
		worker := NewResultsWorker(resultsService, log, cfg.Worker.Interval, cfg.Worker.Window)
		go worker.Start(ctx)
	}

	handler := httpapi.NewGradingHandler(topicService, answerKeyService, submissionService, log)
	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      httpapi.NewRouter(handler, log),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Infof("Starting HTTP server on %s", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
