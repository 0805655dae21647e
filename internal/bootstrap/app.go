package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/account"
	"jobhunt-backend/internal/ai"
	"jobhunt-backend/internal/analyses"
	googleauth "jobhunt-backend/internal/auth"
	"jobhunt-backend/internal/cache"
	"jobhunt-backend/internal/jobs"
	"jobhunt-backend/internal/llm"
	"jobhunt-backend/internal/llm/gemini"
	"jobhunt-backend/internal/llm/openai"
	"jobhunt-backend/internal/queue"
	"jobhunt-backend/internal/resumes"
	"jobhunt-backend/internal/services/health"
	sharedauth "jobhunt-backend/internal/shared/auth"
	"jobhunt-backend/internal/shared/config"
	"jobhunt-backend/internal/shared/server"
	"jobhunt-backend/internal/shared/storage/db"
	"jobhunt-backend/internal/shared/storage/object"
	localstore "jobhunt-backend/internal/shared/storage/object/local"
	s3store "jobhunt-backend/internal/shared/storage/object/s3"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/usage"
	"jobhunt-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store
	Queue  queue.Client
	Signer *sharedauth.Signer
	LLM    llm.Client

	UsersRepo    users.Repo
	JobsRepo     jobs.Repo
	ResumesRepo  resumes.Repo
	AnalysesRepo analyses.Repo
	CacheStore   cache.Store

	UsersService    *users.Service
	JobsService     *jobs.Service
	ResumesService  *resumes.Service
	AnalysesService *analyses.Service
	UsageService    *usage.Service
	CacheService    *cache.Service
	AccountService  *account.Service
	AI              *ai.Manager

	// Local is set when analyses run in-process instead of on the queue.
	Local *ai.LocalDispatcher
}

// Options adjust Build for callers that do not serve HTTP.
type Options struct {
	// SkipRouter leaves Router nil.
	SkipRouter bool
	// LLM overrides the provider chosen from config.
	LLM llm.Client
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer, err := sharedauth.NewSigner(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient := opts.LLM
	if llmClient == nil {
		if llmClient, err = BuildLLM(ctx, cfg); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		Signer: signer,
		LLM:    llmClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}
	if !opts.SkipRouter {
		app.Router = buildRouter(app)
	}
	return app, nil
}

// Close waits for in-process analyses and closes the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Local != nil {
		errs = append(errs, a.Local.Wait(ctx))
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			return nil, errors.New("DATABASE_URL is required")
		}
		telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, cfg.DatabaseURL, db.LambdaOptions())
	}
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.ServerOptions(cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnLifetime))
	if err != nil {
		return nil, err
	}
	// Long-running processes migrate on start; Lambda relies on cmd/migrate.
	if err := db.RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return conn, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if cfg.AnalysisQueue == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.AnalysisQueue)
}

// BuildLLM picks the provider named by LLM_PROVIDER. A provider without an
// API key yields the placeholder, which fails every call with
// ai_not_configured.
func BuildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	switch provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			break
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			break
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
	case "", "none":
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": provider})
	return llm.Placeholder{}, nil
}

func buildServices(app *App) error {
	var (
		usageSvc *usage.Service
		err      error
	)
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		if app.CacheStore, err = cache.NewGormStore(app.DB); err != nil {
			return fmt.Errorf("cache store: %w", err)
		}
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB), app.Config.FreePlanLimit)
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.CacheStore = cache.NewMemoryStore()
		usageSvc = usage.NewService(app.Config.FreePlanLimit)
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.JobsService = jobs.NewService(app.JobsRepo)
	app.ResumesService = resumes.NewService(app.ResumesRepo, app.Store)
	app.AnalysesService = analyses.NewService(app.AnalysesRepo)
	app.UsageService = usageSvc
	app.CacheService = cache.NewService(app.CacheStore, app.Config.CacheTTL)
	app.AccountService = &account.Service{
		UserRepo:     app.UsersRepo,
		JobRepo:      app.JobsRepo,
		ResumeRepo:   app.ResumesRepo,
		AnalysisRepo: app.AnalysesRepo,
		CacheStore:   app.CacheStore,
		Usage:        usageSvc,
		Objects:      app.Store,
	}

	app.AI = ai.NewManager(ai.Deps{
		LLM:      app.LLM,
		Analyses: app.AnalysesRepo,
		Cache:    app.CacheService,
		Usage:    usageSvc,
		Jobs:     app.JobsService,
		Resumes:  app.ResumesService,
	})
	if app.Queue != nil {
		app.AI.Dispatcher = ai.NewQueueDispatcher(app.Queue)
	} else {
		app.Local = ai.NewLocalDispatcher(app.AI, app.Config.WorkerConc)
		app.AI.Dispatcher = app.Local
	}
	return nil
}

func buildRouter(app *App) *gin.Engine {
	cfg := app.Config
	return server.NewRouter(server.RouterDeps{
		Config:      cfg,
		Verifier:    app.Signer,
		Health:      health.NewService(app.DB, cfg.LLMProvider),
		AuthHandler: googleauth.NewHandler(app.UsersService, app.Signer),
		GoogleAuth: googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.FrontendURL,
			app.UsersService,
			app.Signer,
		),
		UserHandler:     users.NewHandler(app.UsersService),
		JobHandler:      jobs.NewHandler(app.JobsService),
		ResumeHandler:   resumes.NewHandler(app.ResumesService),
		AIHandler:       ai.NewHandler(app.AI),
		CacheHandler:    cache.NewHandler(app.CacheService),
		AnalysisHandler: analyses.NewHandler(app.AnalysesService),
		UsageHandler:    usage.NewHandler(app.UsageService),
		AccountHandler:  account.NewHandler(app.AccountService),
	})
}
