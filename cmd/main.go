package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"Yurift-App/internal/config"
	"Yurift-App/internal/domain/repository"
	"Yurift-App/internal/domain/session"
	"Yurift-App/internal/handler"
	"Yurift-App/internal/infrastructure/driftapi"
	"Yurift-App/internal/infrastructure/firestore"
	"Yurift-App/internal/infrastructure/geolocation"
	"Yurift-App/internal/pkg/logger"
	repoImpl "Yurift-App/internal/repository"
	"Yurift-App/internal/usecase"
)

const version = "2.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.LogFile, cfg.IsProduction())
	defer appLogger.Sync()

	ctx := context.Background()

	// 検索ログ（Firestore未設定なら保存しない）
	var searchLogRepo repository.SearchLogRepository = repoImpl.NoopSearchLogRepository{}
	if cfg.SearchLogEnabled() {
		firestoreClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, appLogger)
		if err != nil {
			appLogger.Warn("main", "⚠️ Firestore初期化失敗、検索ログは保存しません", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer firestoreClient.Close()
			searchLogRepo = repoImpl.NewFirestoreSearchLogRepository(firestoreClient.GetClient(), cfg.SearchLogTTLHours)
		}
	}

	// Dependency injection
	driftClient := driftapi.NewClient(cfg.DriftAPIBaseURL, cfg.DriftAPITimeout)
	ipProvider := geolocation.NewIPProvider(cfg.GeolocationAPIURL, cfg.GeolocationTimeout)
	sessionRepo := repoImpl.NewMemorySessionRepository(cfg.SessionTTL, cfg.SessionCleanupInterval)
	driftUseCase := usecase.NewDriftUseCase(sessionRepo, driftClient, ipProvider, searchLogRepo, appLogger, session.DefaultLocateTimeout)
	driftHandler := handler.NewDriftHandler(driftUseCase, driftClient, version)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		handler.RequestIDMiddleware(),
		handler.RequestLoggerMiddleware(appLogger),
		handler.SecurityHeadersMiddleware(cfg.IsProduction()),
		handler.CORSMiddleware(cfg.AllowedOrigins),
	)
	driftHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("main", fmt.Sprintf("🚀 Yurift-App server starting on :%s", cfg.Port), map[string]interface{}{
			"env":            cfg.Env,
			"drift_api":      cfg.DriftAPIBaseURL,
			"search_logging": cfg.SearchLogEnabled(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("main", "💥 サーバー起動失敗", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("main", "🛑 サーバーを停止します", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("main", "💥 シャットダウン失敗", map[string]interface{}{"error": err.Error()})
	}
}
