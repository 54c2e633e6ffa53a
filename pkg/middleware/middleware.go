package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	mw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return mw.RateLimiter(mw.NewRateLimiterMemoryStore(rps))
}

func NewRequestID() echo.MiddlewareFunc {
	return mw.RequestIDWithConfig(mw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

func RequestLoggerConfig(log *zap.Logger) mw.RequestLoggerConfig {
	log = log.Named("echo")
	return mw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v mw.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}
