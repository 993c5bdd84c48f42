package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bryanwahyu/carbon-audit/internal/application"
	appai "github.com/bryanwahyu/carbon-audit/internal/application/ai"
	appcomplaints "github.com/bryanwahyu/carbon-audit/internal/application/complaints"
	appsubs "github.com/bryanwahyu/carbon-audit/internal/application/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/config"
	"github.com/bryanwahyu/carbon-audit/internal/domain/activity"
	domai "github.com/bryanwahyu/carbon-audit/internal/domain/ai"
	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
	"github.com/bryanwahyu/carbon-audit/internal/domain/briefs"
	"github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
	"github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
	openaic "github.com/bryanwahyu/carbon-audit/internal/infra/ai/openai"
	"github.com/bryanwahyu/carbon-audit/internal/infra/ai/prompt"
	"github.com/bryanwahyu/carbon-audit/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/carbon-audit/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/carbon-audit/internal/infra/db/postgres"
	"github.com/bryanwahyu/carbon-audit/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/carbon-audit/internal/infra/storage"
	"github.com/bryanwahyu/carbon-audit/internal/logger"
	"github.com/bryanwahyu/carbon-audit/internal/middleware"
)

type repositories struct {
	submissions submissions.Repository
	complaints  complaints.Repository
	activity    activity.Repository
	briefs      briefs.Repository
	db          *sql.DB
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("database init error", zap.Error(err))
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	health := map[string]middleware.HealthChecker{}
	if repos.db != nil {
		health["database"] = middleware.PingDatabase(repos.db)
	}

	// init minio, optional
	var evidence submissions.EvidenceStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			zlog.Fatal("minio init error", zap.Error(err))
		}
		evidence = store
		health["evidence"] = middleware.CheckFunc(store.Ping)
	} else {
		zlog.Warn("minio endpoint not set, evidence uploads disabled")
	}

	rng := analysis.NewRandom()
	if cfg.Analysis.Seed != 0 {
		rng = analysis.NewSeededRandom(cfg.Analysis.Seed)
	}
	engine := analysis.NewEngine(rng, analysis.WithDelay(cfg.Analysis.Delay))

	metrics := middleware.NewMetrics(prometheus.DefaultRegisterer)
	clock := application.SystemClock{}

	subsSvc := &appsubs.Service{
		Repo:         repos.submissions,
		Analyzer:     engine,
		Evidence:     evidence,
		Activities:   repos.activity,
		Clock:        clock,
		Logger:       zlog.Named("submissions"),
		Metrics:      metrics,
		HistoryLimit: cfg.Analysis.HistoryLimit,
	}
	aiSvc := appai.NewService(briefClient(cfg, zlog), repos.submissions, repos.briefs, repos.activity, clock, zlog.Named("briefs"))
	complaintSvc := appcomplaints.NewService(repos.complaints, repos.submissions, repos.activity, clock, zlog.Named("complaints"))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(ctx, time.Minute)

	keys := middleware.NewKeyring(cfg.Auth.Companies, cfg.Auth.Reviewers)
	if len(cfg.Auth.Companies)+len(cfg.Auth.Reviewers) == 0 {
		zlog.Warn("no API keys configured, every authenticated route will answer 401")
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(cfg.Server.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Mount("/", httpserver.NewRouter(httpserver.Deps{
		Submissions:    subsSvc,
		Briefs:         aiSvc,
		Complaints:     complaintSvc,
		Keys:           keys,
		Limiter:        limiter,
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		Health:         health,
		Logger:         zlog.Named("http"),
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		zlog.Info("server listening",
			zap.String("addr", addr),
			zap.String("driver", cfg.Database.Driver),
			zap.Duration("analysis_delay", cfg.Analysis.Delay),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	zlog.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		zlog.Warn("using in-memory storage, data is lost on restart")
		return repositories{
			submissions: memory.NewSubmissionStore(),
			complaints:  memory.NewComplaintStore(),
			activity:    memory.NewActivityStore(),
			briefs:      memory.NewBriefStore(),
		}, nil

	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return repositories{}, err
		}
		if cfg.Database.Migrate {
			if err := pgp.Migrate(ctx, db); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("postgres migrate: %w", err)
			}
		}
		return repositories{
			submissions: pgp.NewSubmissionRepository(db),
			complaints:  pgp.NewComplaintRepository(db),
			activity:    pgp.NewActivityRepository(db),
			briefs:      pgp.NewBriefRepository(db),
			db:          db,
		}, nil

	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return repositories{}, err
		}
		if cfg.Database.Migrate {
			if err := mysqlp.Migrate(ctx, db); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("mysql migrate: %w", err)
			}
		}
		return repositories{
			submissions: mysqlp.NewSubmissionRepository(db),
			complaints:  mysqlp.NewComplaintRepository(db),
			activity:    mysqlp.NewActivityRepository(db),
			briefs:      mysqlp.NewBriefRepository(db),
			db:          db,
		}, nil
	}
}

// briefClient pakai OpenAI kalau ada API key, selain itu heuristik lokal
func briefClient(cfg *config.Config, zlog *zap.Logger) domai.Client {
	if cfg.OpenAI.APIKey == "" {
		zlog.Info("OPENAI_API_KEY not set, reviewer briefs use the local heuristic")
		return prompt.LocalClient{}
	}
	if cfg.OpenAI.BaseURL != "" {
		return openaic.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	}
	return openaic.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
