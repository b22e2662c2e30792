package app

import (
	"context"
	"ethics_eval_backend/internal/config"
	"ethics_eval_backend/internal/controller"
	"ethics_eval_backend/internal/repository"
	"ethics_eval_backend/internal/service"
	"ethics_eval_backend/pkg/configwatcher"
	"ethics_eval_backend/pkg/database"
	"ethics_eval_backend/pkg/logger"
	"ethics_eval_backend/pkg/monitoring"
	"ethics_eval_backend/pkg/security"
	"ethics_eval_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigPath      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Settings        *service.ScoringSettings
	services        *services
	configCallbacks []func(*config.Config)
	shutdownHooks   []func(context.Context)
}

type repositories struct {
	question   *repository.QuestionRepository
	response   *repository.ResponseRepository
	score      *repository.ScoreRepository
	tension    *repository.TensionRepository
	assignment *repository.AssignmentRepository
	lock       *repository.RecomputeLock
}

type services struct {
	normalizer *service.AnswerNormalizer
	score      *service.ScoreService
	response   *service.ResponseService
	risk       *service.RiskService
	analytics  *service.AnalyticsService
	tension    *service.TensionService
	archive    *service.ReportArchive
}

type controllers struct {
	health    *controller.HealthController
	score     *controller.ScoreController
	response  *controller.ResponseController
	analytics *controller.AnalyticsController
	tension   *controller.TensionController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		question:   repository.NewQuestionRepository(db),
		response:   repository.NewResponseRepository(db),
		score:      repository.NewScoreRepository(db),
		tension:    repository.NewTensionRepository(db),
		assignment: repository.NewAssignmentRepository(db),
	}
	if rdb != nil {
		repos.lock = repository.NewRecomputeLock(rdb)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	// a nil *RecomputeLock must not reach the interface as a non-nil value
	var locker service.Locker
	if repos.lock != nil {
		locker = repos.lock
	}

	normalizer := service.NewAnswerNormalizer(a.Settings)
	scoreService := service.NewScoreService(repos.response, repos.question, repos.score, locker, a.Settings)

	return &services{
		normalizer: normalizer,
		score:      scoreService,
		response:   service.NewResponseService(repos.question, repos.response, normalizer, scoreService),
		risk:       service.NewRiskService(repos.score, repos.response, repos.question, a.Settings),
		analytics:  service.NewAnalyticsService(repos.score, repos.response, repos.question, repos.tension, repos.assignment, a.Settings),
		tension:    service.NewTensionService(repos.tension),
		archive:    service.NewReportArchive(service.NewStorageProvider(&cfg.Storage)),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		health:    controller.NewHealthController(db),
		score:     controller.NewScoreController(s.score),
		response:  controller.NewResponseController(s.response),
		analytics: controller.NewAnalyticsController(s.analytics, s.risk, s.archive),
		tension:   controller.NewTensionController(s.tension),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startConfigWatcher pushes scoring changes from the config file into the
// running services.
func (a *App) startConfigWatcher(ctx context.Context) {
	if a.ConfigPath == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.ConfigPath, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config, configPath string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		DB:         db,
		Settings:   service.NewScoringSettings(cfg.Scoring),
	}
	if cfg.MigrateOnly {
		return app
	}

	// redis only backs the optional recompute lock
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, recompute lock disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.Settings.Set(newCfg.Scoring)
		logger.Log.Info("Scoring settings reloaded",
			zap.String("rangePolicy", newCfg.Scoring.RangePolicy),
			zap.Bool("dedupResubmissions", newCfg.Scoring.DedupResubmissions))
	})

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("ethics-eval-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownHooks = append(app.shutdownHooks, func(ctx context.Context) {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		})
	}

	app.registerRoutes(router, controllers, cfg)

	if _, ok := services.archive.Provider.(*service.LocalStorageProvider); ok {
		if err := os.MkdirAll(cfg.Storage.LocalPath, os.ModePerm); err != nil {
			logger.Log.Error("Failed to create report directory", zap.String("path", cfg.Storage.LocalPath), zap.Error(err))
		}
		router.Static("/reports", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	a.startConfigWatcher(watchCtx)

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// wait for an interrupt, then give in-flight requests 5 seconds
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	for _, hook := range a.shutdownHooks {
		hook(ctx)
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
