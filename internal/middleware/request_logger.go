package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const HeaderRequestID = echo.HeaderXRequestID

// リクエストIDを決めて、そのIDを持つloggerをrequest contextに入れる。
// usecaseはzerolog.Ctx(ctx)で取り出す。
func RequestContextLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			l := base.With().Str("request_id", requestID).Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			return next(c)
		}
	}
}

// 1リクエスト1行のアクセスログ
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				//echoのエラーハンドラでステータスを確定させる
				c.Error(err)
			}

			req := c.Request()
			ev := zerolog.Ctx(req.Context()).Info()
			if c.Response().Status >= 500 {
				ev = zerolog.Ctx(req.Context()).Error()
			}
			if userID, ok := c.Get(CtxUserIDKey).(int64); ok {
				ev = ev.Int64("user_id", userID)
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", c.Path()).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request completed")

			return nil
		}
	}
}
