package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sitechat/config"
	"sitechat/internal/handler"
	"sitechat/internal/httpserver"
	"sitechat/internal/repository"
	"sitechat/internal/service/auth"
	"sitechat/internal/service/chart"
	"sitechat/internal/service/chat"
	"sitechat/internal/service/note"
	"sitechat/internal/service/project"
	"sitechat/internal/service/report"
	"sitechat/internal/service/weather"
	"sitechat/internal/session"
	"sitechat/pkg/db"
	"sitechat/pkg/logger"
	"sitechat/pkg/mq"
	pkgredis "sitechat/pkg/redis"
	"sitechat/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	log.Info("Starting sitechat...",
		zap.String("port", cfg.Server.Port),
		zap.String("notes_backend", cfg.Notes.Backend),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Bool("mq_enabled", cfg.MQ.URL != ""),
	)

	for _, dir := range []string{cfg.Report.Dir, filepath.Join(cfg.Static.Dir, "charts")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("Failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	// Redis: sessions + note de-duplication. Without it both stay in process.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = pkgredis.NewRedisClient(cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	var sessionStore session.Store
	var deduper *util.Deduper
	if rdb != nil {
		sessionStore = session.NewRedisStore(rdb, cfg.JWT.TTL)
		deduper = util.NewDeduper(rdb, cfg.Notes.DedupTTL, log)
	} else {
		log.Info("Redis not configured, using in-memory sessions")
		sessionStore = session.NewMemoryStore(cfg.JWT.TTL)
	}

	// Note storage
	var noteRepo repository.NoteRepository
	switch cfg.Notes.Backend {
	case "postgres":
		log.Info("Initializing database connection...")
		dbConn, err := db.NewConnection(cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		defer dbConn.Close()

		initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		noteRepo, err = repository.NewPostgresNoteRepository(initCtx, dbConn, log)
		cancel()
		if err != nil {
			log.Fatal("Failed to init note repository", zap.Error(err))
		}
	default:
		noteRepo, err = repository.NewFileNoteRepository(cfg.Notes.Dir, log)
		if err != nil {
			log.Fatal("Failed to init note repository", zap.Error(err))
		}
	}

	// Domain events are optional
	var publisher mq.EventPublisher = mq.NoopPublisher{}
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("MQ unavailable, domain events disabled", zap.Error(err))
		} else {
			publisher = p
			log.Info("MQ publisher connected", zap.String("exchange", mq.ExchangeName))
		}
	}
	defer publisher.Close()

	projectRepo, err := repository.NewProjectRepository(log)
	if err != nil {
		log.Fatal("Failed to load project data", zap.Error(err))
	}
	userRepo, err := repository.NewUserRepository(log)
	if err != nil {
		log.Fatal("Failed to load user data", zap.Error(err))
	}

	authService := auth.NewService(userRepo)
	projectService := project.NewService(projectRepo)
	chatService := chat.NewService(chat.NewClassifier(projectService), log)
	noteService := note.NewService(noteRepo, publisher, deduper, log)
	reportService := report.NewService(cfg.Report.Dir, publisher, log)
	chartService := chart.NewService(cfg.Static.Dir, log)
	weatherService := weather.NewService(weather.NewMockProvider(), log)

	router := httpserver.NewRouter(httpserver.Deps{
		Chat:      handler.NewChatHandler(authService, projectService, chatService, log),
		Reports:   handler.NewReportHandler(authService, projectService, reportService, chartService, weatherService, log),
		Notes:     handler.NewNoteHandler(authService, noteService, log),
		Sessions:  session.NewManager(sessionStore, cfg.JWT.Secret, cfg.JWT.TTL, log),
		NoteStore: noteRepo,
		Publisher: publisher,
		StaticDir: cfg.Static.Dir,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down sitechat gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("sitechat shutdown complete")
}
