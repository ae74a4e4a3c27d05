package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/db"
)

const (
	sessionCookie = "chitty_session"
	userKey       = "user"
)

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// requireLogin resolves the session cookie. API calls without a session
// get 401; pages redirect to the login form.
func (h *Handler) requireLogin(c *gin.Context) {
	token, _ := c.Cookie(sessionCookie)
	u, err := h.Auth.UserForSession(token)
	if err != nil {
		if isAPI(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	c.Set(userKey, u)
	c.Next()
}

func (h *Handler) requireAdmin(c *gin.Context) {
	u := currentUser(c)
	if u == nil || !u.IsAdmin() {
		c.HTML(http.StatusForbidden, "error.html", h.page(c, "", gin.H{
			"error": "Admin access required",
		}))
		c.Abort()
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *db.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*db.User)
	return u
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *Handler) setSession(c *gin.Context, token string, expires time.Time, remember bool) {
	maxAge := 0
	if remember {
		maxAge = int(expires.Sub(h.Now()).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", h.SecureCookies, true)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.SecureCookies, true)
}
