package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BinLe1988/cofounder-match/api"
	"github.com/BinLe1988/cofounder-match/api/handlers"
	"github.com/BinLe1988/cofounder-match/configs"
	"github.com/BinLe1988/cofounder-match/database"
	"github.com/BinLe1988/cofounder-match/pkg/ai"
	"github.com/BinLe1988/cofounder-match/pkg/chunking"
	"github.com/BinLe1988/cofounder-match/pkg/filter"
	"github.com/BinLe1988/cofounder-match/pkg/logger"
	"github.com/BinLe1988/cofounder-match/pkg/matching"
	"github.com/BinLe1988/cofounder-match/pkg/retrieval"
	"github.com/BinLe1988/cofounder-match/pkg/storage"
	"github.com/BinLe1988/cofounder-match/pkg/tasks"
	"github.com/BinLe1988/cofounder-match/pkg/utils"
	"github.com/BinLe1988/cofounder-match/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := configs.Load(os.Getenv("COFOUNDER_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *configs.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库连接
	db, err := database.Open(cfg.Database, zlog)
	if err != nil {
		return err
	}
	defer database.Close(db, zlog)

	// 文件存储
	var (
		store storage.BlobStore
		files *handlers.FileHandler
	)
	switch cfg.Storage.Driver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, cfg.Storage.CredentialsFile, cfg.Storage.SignedURLTTL)
		if err != nil {
			return err
		}
		defer gcs.Close()
		store = gcs
	default:
		local, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL, cfg.Storage.SignedURLTTL)
		if err != nil {
			return err
		}
		store = local
		files = handlers.NewFileHandler(local)
	}
	resolver := storage.NewResolver(store, cfg.Storage.URLCacheSize, cfg.Storage.URLCacheTTL, zlog)
	defer resolver.Close()

	// 延迟任务队列
	var queue tasks.Queue
	switch cfg.Queue.Driver {
	case "redis":
		queue, err = tasks.NewRedisQueue(ctx, cfg.Queue.RedisAddr, cfg.Queue.RedisKey)
		if err != nil {
			return err
		}
	default:
		queue = tasks.NewMemoryQueue(cfg.Queue.Buffer)
	}

	contentFilter, err := filter.NewFromConfig(cfg.Filter.SensitiveWords, cfg.Filter.Patterns)
	if err != nil {
		return err
	}

	search := retrieval.NewService(db, retrieval.Options{
		Mode:         cfg.Retrieval.ContextMode,
		Limit:        cfg.Retrieval.Limit,
		PublicOnly:   cfg.Retrieval.PublicOnly,
		HistoryTopUp: cfg.Retrieval.HistoryTopUp,
	})
	if cfg.AI.APIKey == "" {
		zlog.Warn("ai api key not configured, persona replies will use the fallback message")
	}
	responder := services.NewResponder(db, ai.NewClient(ai.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AI.Timeout,
	}), search, services.ResponderConfig{
		Model:            cfg.AI.Model,
		MaxTokens:        cfg.AI.MaxTokens,
		Temperature:      cfg.AI.Temperature,
		PresencePenalty:  cfg.AI.PresencePenalty,
		FrequencyPenalty: cfg.AI.FrequencyPenalty,
		HistoryWindow:    cfg.AI.HistoryWindow,
		RetrievalWindow:  cfg.AI.RetrievalWindow,
	}, zlog)

	registry := tasks.NewRegistry()
	if err := registry.Register(responder.Handler()); err != nil {
		return err
	}
	worker := tasks.NewWorker(queue, registry, zlog, cfg.Queue.Workers)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	worker.Start(workerCtx)

	jwt := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	api.SetupRouter(router, api.Options{
		JWT:          jwt,
		AllowOrigins: cfg.Server.AllowOrigins,
		Log:          zlog,
	}, api.Handlers{
		Auth:          handlers.NewAuthHandler(services.NewAuthService(db, jwt, zlog)),
		Profiles:      handlers.NewProfileHandler(services.NewProfileService(db, resolver, zlog)),
		Swipes:        handlers.NewSwipeHandler(services.NewSwipeService(db, resolver, matching.NewMatcher(), zlog)),
		Matches:       handlers.NewMatchHandler(services.NewMatchService(db, resolver, contentFilter, zlog)),
		Documents:     handlers.NewDocumentHandler(services.NewDocumentService(db, chunking.New(), store, zlog), search),
		AiChats:       handlers.NewAiChatHandler(services.NewAiChatService(db, contentFilter, queue, zlog)),
		Notifications: handlers.NewNotificationHandler(services.NewNotificationService(db, zlog)),
		Social:        handlers.NewSocialHandler(services.NewSocialService(db, zlog)),
		Filter:        handlers.NewContentFilterHandler(contentFilter),
		Files:         files,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		zlog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			stopWorkers(queue, worker, cancelWorkers, zlog)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("http shutdown", zap.Error(err))
	}

	stopWorkers(queue, worker, cancelWorkers, zlog)
	return nil
}

// stopWorkers 先关闭队列让进行中的任务跑完，再取消 worker 上下文
func stopWorkers(queue tasks.Queue, worker *tasks.Worker, cancel context.CancelFunc, zlog *zap.Logger) {
	if err := queue.Close(); err != nil {
		zlog.Warn("close task queue", zap.Error(err))
	}
	worker.Wait()
	cancel()
}
