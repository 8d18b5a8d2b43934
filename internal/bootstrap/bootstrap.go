package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ivmarkin/veridoc/internal/auth"
	"github.com/ivmarkin/veridoc/internal/config"
	"github.com/ivmarkin/veridoc/internal/core/ports"
	"github.com/ivmarkin/veridoc/internal/core/usecase"
	"github.com/ivmarkin/veridoc/internal/infrastructure/detector"
	"github.com/ivmarkin/veridoc/internal/infrastructure/extractor"
	"github.com/ivmarkin/veridoc/internal/infrastructure/queue/nats"
	"github.com/ivmarkin/veridoc/internal/infrastructure/repository/postgres"
	"github.com/ivmarkin/veridoc/internal/infrastructure/resilience"
	"github.com/ivmarkin/veridoc/internal/infrastructure/similarity"
	"github.com/ivmarkin/veridoc/internal/infrastructure/storage/localfs"
	"github.com/ivmarkin/veridoc/pkg/api"
)

type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	Batches ports.BatchRepository
	Users   ports.UserRepository
	Tokens  *auth.TokenManager

	SubmitUC  ports.BatchSubmitter
	QueryUC   ports.BatchReader
	DetectUC  ports.TextDetector
	ProcessUC ports.BatchProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	batches := postgres.NewBatchRepository(db)
	documents := postgres.NewDocumentRepository(db)
	users := postgres.NewUserRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
	})

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	detectorRouter := detector.NewRouter(executor)
	detectorRouter.Register(api.ProviderLocal, detector.NewLocalClient(cfg.LocalDetectorURL, cfg.LocalDetectorModel))
	if cfg.OpenAIAPIKey != "" {
		detectorRouter.Register(api.ProviderOpenAI, detector.NewChatClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, "openai"))
	}
	if cfg.TogetherAPIKey != "" {
		detectorRouter.Register(api.ProviderTogether, detector.NewChatClient(cfg.TogetherBaseURL, cfg.TogetherAPIKey, cfg.TogetherModel, "together"))
	}

	embedder := similarity.NewEmbedder(cfg.EmbedURL, cfg.EmbedModel)
	analyzer := similarity.NewAnalyzer(embedder)
	texts := extractor.New(storage)

	submitUC := usecase.NewSubmitBatchUseCase(batches, documents, storage, queue)
	processUC := usecase.NewProcessBatchUseCase(batches, documents, texts, detectorRouter, analyzer, cfg.PlagiarismMinSimilarity)
	queryUC := usecase.NewBatchQueryUseCase(batches, documents)
	detectUC := usecase.NewDetectTextUseCase(detectorRouter)

	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)

	return &App{
		Config: cfg,

		Queue:   queue,
		Batches: batches,
		Users:   users,
		Tokens:  tokens,

		SubmitUC:  submitUC,
		QueryUC:   queryUC,
		DetectUC:  detectUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
