package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
	"github.com/SivaTeja36/Bus-reservation/internal/logging"
	"github.com/SivaTeja36/Bus-reservation/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"
	sessionIDKey = "session_id"
	userKey      = "user"
	cookieKey    = "session_cookie"
)

type sessionCookie struct {
	name   string
	secure bool
}

func (sc sessionCookie) set(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.name, id, 0, "/", "", sc.secure, true)
}

// SessionReader resolves the signed-in user of a session.
type SessionReader interface {
	CurrentUser(ctx context.Context, id string) (*domain.User, error)
}

// RequestID tags every request with an ID, reusing an incoming
// X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one line per request.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
			"ip", c.ClientIP(),
		)
	}
}

// Sessions binds the request to its session cookie, issuing a fresh ID
// when there is none, and loads the signed-in user if any.
func Sessions(reader SessionReader, cookieName string, secure bool, logger *slog.Logger) gin.HandlerFunc {
	cookie := sessionCookie{name: cookieName, secure: secure}
	return func(c *gin.Context) {
		c.Set(cookieKey, cookie)
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			cookie.set(c, id)
		}
		c.Set(sessionIDKey, id)
		ctx := session.WithID(c.Request.Context(), id)

		user, err := reader.CurrentUser(ctx, id)
		if err != nil {
			logging.FromContext(ctx, logger).Error("load session", "error", err)
		}
		if user != nil {
			c.Set(userKey, user)
			ctx = session.WithUser(ctx, user)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// rotateSession moves the request onto id and hands the browser a cookie
// for it. The previous ID is returned.
func rotateSession(c *gin.Context, id string) string {
	old := sessionID(c)
	if v, ok := c.Get(cookieKey); ok {
		v.(sessionCookie).set(c, id)
	}
	c.Set(sessionIDKey, id)
	c.Request = c.Request.WithContext(session.WithID(c.Request.Context(), id))
	return old
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// RequireSession sends anonymous visitors to the login page, or answers
// 401 on the JSON surface.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			c.Next()
			return
		}
		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// RequireAccess denies resources the user's role may not see, before
// any upstream call is made.
func RequireAccess(r domain.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.AllowedFor(currentUser(c)) {
			c.Next()
			return
		}
		denyAccess(c)
	}
}

func denyAccess(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.HTML(http.StatusForbidden, "forbidden.tmpl", shellData(c, "Access denied", ""))
	c.Abort()
}
