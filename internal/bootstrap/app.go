package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/cvextract"
	"lbs-connect/internal/digest"
	"lbs-connect/internal/email"
	"lbs-connect/internal/llm"
	"lbs-connect/internal/llm/gemini"
	"lbs-connect/internal/llm/openai"
	"lbs-connect/internal/matches"
	"lbs-connect/internal/notify"
	"lbs-connect/internal/onboarding"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/services/health"
	"lbs-connect/internal/shared/auth"
	"lbs-connect/internal/shared/cache"
	"lbs-connect/internal/shared/config"
	"lbs-connect/internal/shared/server"
	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/storage/db"
	"lbs-connect/internal/shared/storage/object"
	localstore "lbs-connect/internal/shared/storage/object/local"
	s3store "lbs-connect/internal/shared/storage/object/s3"
	"lbs-connect/internal/workerproc"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store
	Cache  *cache.Redis
	Queue  queue.Client
	// AMQP is set when QUEUE_BACKEND=amqp so the worker can consume from it.
	AMQP  *queue.AMQPClient
	LLM   llm.Client
	Email email.Sender

	Profiles   *profiles.Service
	CVExtract  *cvextract.Service
	Matches    *matches.Service
	Notify     *notify.Service
	Onboarding *onboarding.Service
	Digest     *digest.Runner
	Jobs       *workerproc.Processor
}

// Build wires every dependency from cfg.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Cache:  cache.NewRedis(ctx, cfg.RedisURL),
	}

	if err := buildQueue(ctx, app); err != nil {
		return nil, err
	}
	if app.LLM, err = NewLLM(ctx, cfg); err != nil {
		return nil, err
	}
	if app.Email, err = buildEmail(cfg); err != nil {
		return nil, err
	}
	buildServices(app)

	keys, err := auth.NewKeys(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	checks := map[string]health.Pinger{"db": nil, "cache": nil}
	if app.DB != nil {
		checks["db"] = app.DB
	}
	if app.Cache.Enabled() {
		checks["cache"] = health.PingFunc(app.Cache.Ping)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:     cfg,
		Keys:       keys,
		Health:     health.NewService(checks),
		Profiles:   profiles.NewHandler(app.Profiles),
		Onboarding: onboarding.NewHandler(app.Onboarding),
		Matches:    matches.NewHandler(app.Matches, app.Notify),
		CVExtract:  cvextract.NewHandler(app.CVExtract),
		Notify:     notify.NewHandler(app.Notify),
		Limiter:    middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	if a.AMQP != nil {
		a.AMQP.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	profile := db.RuntimeProfile()
	if profile == db.ProfileLambda {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.CVBucket,
			Prefix:          cfg.CVPrefix,
			KMSKeyID:        cfg.SSEKMSKeyID,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, app *App) error {
	switch app.Config.QueueBackend {
	case "sqs":
		client, err := queue.NewSQSClient(ctx, app.Config.AWSRegion, app.Config.SQSQueueURL)
		if err != nil {
			return err
		}
		app.Queue = client
	case "amqp":
		client, err := queue.NewAMQPClient(app.Config.AMQPURL, app.Config.AMQPQueue)
		if err != nil {
			return err
		}
		app.Queue = client
		app.AMQP = client
	}
	return nil
}

// NewLLM returns the configured provider wrapped with call metrics.
func NewLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return &llm.Instrumented{Provider: "openai", Next: client}, nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, "", cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return &llm.Instrumented{Provider: "gemini", Next: client}, nil
	default:
		log.Printf("bootstrap: no LLM provider configured; LLM-backed functions will fail")
		return &llm.Instrumented{Provider: "placeholder", Next: llm.Placeholder{}}, nil
	}
}

func buildEmail(cfg config.Config) (email.Sender, error) {
	if cfg.EmailProvider == "resend" {
		return email.NewResend(cfg.ResendAPIKey, cfg.ResendBaseURL)
	}
	return email.LogSender{}, nil
}

func buildServices(app *App) {
	var (
		profileRepo profiles.Repo
		matchRepo   matches.Repo
		emailLogs   notify.LogRepo
	)
	if app.DB != nil {
		profileRepo = &profiles.PGRepo{DB: app.DB}
		matchRepo = &matches.PGRepo{DB: app.DB}
		emailLogs = &notify.PGLogRepo{DB: app.DB}
	} else {
		profileRepo = profiles.NewMemoryRepo()
		matchRepo = matches.NewMemoryRepo()
		emailLogs = notify.NewMemoryLogRepo()
	}

	app.Profiles = profiles.NewService(profileRepo)
	app.CVExtract = &cvextract.Service{
		Store:    app.Store,
		LLM:      app.LLM,
		Profiles: app.Profiles,
		Model:    app.Config.LLMModel,
	}
	app.Matches = &matches.Service{
		Repo:     matchRepo,
		Profiles: app.Profiles,
		LLM:      app.LLM,
		Model:    app.Config.LLMModel,
		MatchTTL: app.Config.MatchTTL,
		Cache:    app.Cache,
		CacheTTL: app.Config.MatchCacheTTL,
	}
	app.Notify = &notify.Service{
		Profiles:     app.Profiles,
		LLM:          app.LLM,
		Sender:       app.Email,
		Logs:         emailLogs,
		FromAddress:  app.Config.EmailFromAddress,
		MessageModel: app.Config.LLMMessageModel,
	}
	app.Digest = &digest.Runner{
		Profiles:    app.Profiles,
		Matches:     app.Matches,
		Notifier:    app.Notify,
		Concurrency: app.Config.WorkerConcurrency,
	}
	app.Jobs = &workerproc.Processor{
		CV:       app.CVExtract,
		Matches:  app.Matches,
		Notifier: app.Notify,
		Digest:   app.Digest,
	}

	// Changed preferences regenerate matches right away.
	app.Profiles.AfterSettingsChange = func(ctx context.Context, userID string) error {
		_, err := app.Matches.GenerateAndNotify(ctx, userID, app.Notify)
		return err
	}

	app.Onboarding = &onboarding.Service{
		Profiles: app.Profiles,
		Store:    app.Store,
		Queue:    app.Queue,
	}
	if presigner, ok := app.Store.(object.Presigner); ok {
		app.Onboarding.Presigner = presigner
	}
	if app.Queue == nil {
		app.Onboarding.Run = app.Jobs.Process
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
