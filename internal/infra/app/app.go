package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/core/port"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/config"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/database"
	kafkainfra "github.com/CharlesTPAquino/RegistroMM/internal/infra/kafka"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/logger"
	redisinfra "github.com/CharlesTPAquino/RegistroMM/internal/infra/redis"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/security"
	"github.com/CharlesTPAquino/RegistroMM/internal/infra/telemetry"
	postgresrepo "github.com/CharlesTPAquino/RegistroMM/internal/repository/postgres"
	redisrepo "github.com/CharlesTPAquino/RegistroMM/internal/repository/redis"
	"github.com/CharlesTPAquino/RegistroMM/internal/transport/http/middleware"
	"github.com/CharlesTPAquino/RegistroMM/internal/transport/http/routes"
	"github.com/CharlesTPAquino/RegistroMM/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

// New wires the full application. Secret provisioning validation runs before
// any dependency is opened: a misconfigured process never starts serving.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	validator := config.NewValidator()
	secrets, err := validator.Validate(ctx)
	if err != nil {
		metrics.ObserveStartupValidation(false)
		log.Error("secret provisioning validation failed", zap.Error(err))
		return nil, fmt.Errorf("validate provisioning: %w", err)
	}
	metrics.ObserveStartupValidation(true)

	pool, err := database.NewPostgresPool(ctx, secrets.DatabaseURL, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokenAuthority, err := security.NewTokenAuthority([]byte(secrets.SigningSecret.Expose()), cfg.JWT.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token authority: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			kafkaProducer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	accountRepo := postgresrepo.NewAccountRepository(pool)

	passwordValidator := security.NewPolicyValidator(security.PolicyConfig{
		MinLength:        cfg.Password.MinLength,
		MinStrengthScore: cfg.Password.MinStrengthScore,
	})

	registrationService := usecase.NewRegistrationService(accountRepo, eventPublisher, passwordValidator, metrics, log)

	authService, err := usecase.NewAuthService(accountRepo, eventPublisher, tokenAuthority, metrics, log)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "auth:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	// Readiness re-runs the same validation as startup, so secrets rotated
	// out from under the process surface as not-ready.
	provisioningCheck := func(ctx context.Context) error {
		_, err := validator.Validate(ctx)
		metrics.ObserveStartupValidation(err == nil)
		return err
	}

	engine := routes.Register(routes.Dependencies{
		Config:       cfg,
		Logger:       log,
		RateLimiter:  rateLimiter,
		Metrics:      httpMetrics,
		Auth:         authService,
		Registration: registrationService,
		Database:     pool,
		Cache:        redisClient,
		Provisioning: provisioningCheck,
	})

	if err := eventPublisher.PublishStartupValidated(ctx, domain.StartupValidatedEvent{
		EventID:   uuid.NewString(),
		Passed:    true,
		CheckedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn("publish startup validated event failed", zap.Error(err))
	}

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting credential authority API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
