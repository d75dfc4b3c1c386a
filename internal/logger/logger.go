package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Lelo88/inventory-api-golang/internal/httpx"
)

// New crea el logger de la aplicación.
// En producción: JSON a nivel info. En el resto: consola con colores a nivel debug.
func New(environment string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

// Middleware loguea cada request una vez respondida.
// Reemplaza a middleware.Logger de chi para que todo salga por zap.
func Middleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()
			wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)

			next.ServeHTTP(wrapped, request)

			status := wrapped.Status()
			if status == 0 {
				// Nadie llamó WriteHeader: net/http responde 200.
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.Int("status", status),
				zap.String("method", request.Method),
				zap.String("path", request.URL.Path),
				zap.String("query", request.URL.RawQuery),
				zap.String("ip", request.RemoteAddr),
				zap.String("user-agent", request.UserAgent()),
				zap.Int("bytes", wrapped.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
			}
			if requestID := httpx.RequestIDFrom(request); requestID != "" {
				fields = append(fields, zap.String("request_id", requestID))
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error("HTTP Request", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("HTTP Request", fields...)
			default:
				log.Info("HTTP Request", fields...)
			}
		})
	}
}
