package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"Yurift-App/internal/infrastructure/driftapi"
	"Yurift-App/internal/pkg/logger"
)

const requestIDKey = "request_id"

// CORSMiddleware はALLOWED_ORIGINSのオリジンからの呼び出しを許可する
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", driftapi.RequestIDHeader},
		ExposeHeaders:    []string{driftapi.RequestIDHeader},
		MaxAge:           time.Hour,
	})
}

// SecurityHeadersMiddleware はセキュリティヘッダーを追加する
// Content-Security-Policyは本番環境のみ
func SecurityHeadersMiddleware(isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		if isProduction {
			h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; object-src 'none'")
		}
		c.Next()
	}
}

// RequestIDMiddleware はX-Request-IDを引き継ぎ（なければ生成し）、レスポンスにも返す
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(driftapi.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(driftapi.RequestIDHeader, id)
		c.Next()
	}
}

// RequestLoggerMiddleware はリクエストごとにメソッド・パス・ステータス・処理時間を記録する
func RequestLoggerMiddleware(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(requestIDKey),
		}
		if c.Writer.Status() >= 500 {
			log.Error("http", "💥 リクエスト処理エラー", details)
			return
		}
		log.Info("http", "📨 リクエスト処理完了", details)
	}
}
