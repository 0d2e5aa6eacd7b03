package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	cookieKeySession = "dashboard_session"
	ctxKeySessionID  = "session_id"
	sessionMaxAge    = 24 * time.Hour
)

// SessionMiddleware attaches a session id to every request, issuing a new
// cookie when the visitor has none or the server no longer knows it.
func (svc *APIService) SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var id string
		if cookie, err := ctx.Cookie(cookieKeySession); err == nil && svc.sessions.Touch(cookie.Value) {
			id = cookie.Value
		} else {
			id = svc.sessions.New()
			ctx.SetCookie(&http.Cookie{
				Name:     cookieKeySession,
				Value:    id,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx.Set(ctxKeySessionID, id)
		return next(ctx)
	}
}

func sessionID(ctx echo.Context) string {
	id, _ := ctx.Get(ctxKeySessionID).(string)
	return id
}

func (svc *APIService) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			svc.logger.Info("[api] %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}
