package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/activity"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/ai"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/auth"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/email"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/calendar"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/notes"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/status"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/system"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/tasks"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// SystemProbe reports host metrics and service health.
type SystemProbe interface {
	Info(ctx context.Context) (*system.Info, error)
	Services(ctx context.Context) []system.Service
}

// StatusReader reports what the agent is doing.
type StatusReader interface {
	Status(ctx context.Context) status.Report
}

// EmailMonitor reports the email setup and runs checks.
type EmailMonitor interface {
	Status() email.Report
	Check(ctx context.Context) email.Result
}

// Agenda lists upcoming calendar events.
type Agenda interface {
	Upcoming(ctx context.Context) ([]calendar.Event, error)
}

// Handler holds dependencies for the pages and API handlers.
type Handler struct {
	Auth     *auth.Service
	Activity *activity.Service
	Tasks    *tasks.Service
	Notes    *notes.Service
	Memory   *workspace.Memory
	Docs     *workspace.Docs
	Email    EmailMonitor
	System   SystemProbe
	Status   StatusReader
	Digester *ai.Digester
	Calendar Agenda // nil when no calendar is configured

	// DigestsDir receives digests generated with "save" set.
	DigestsDir string
	// HeartbeatFile is the agent's heartbeat-state.json.
	HeartbeatFile string
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool

	Logger *slog.Logger
	Now    func() time.Time
}

// Server is the dashboard web server.
type Server struct {
	handler *Handler
	router  *gin.Engine
}

// NewServer builds the router for h.
func NewServer(h *Handler) *Server {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	if h.Now == nil {
		h.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.Logger))
	router.SetHTMLTemplate(loadTemplates())

	s := &Server{handler: h, router: router}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes
	router.GET("/login", h.handleLoginPage)
	router.POST("/login", h.handleLogin)
	router.GET("/logout", h.handleLogout)
	router.POST("/api/login", h.handleAPILogin)

	// Web routes
	pages := router.Group("/", h.requireLogin)
	{
		pages.GET("/", h.handleDashboard)
		pages.GET("/activity", h.handleActivityPage)
		pages.GET("/tasks", h.handleTasksPage)
		pages.GET("/emails", h.handleEmailsPage)
		pages.GET("/memory", h.handleMemoryPage)
		pages.GET("/system", h.handleSystemPage)
		pages.GET("/notes", h.handleNotesPage)
		pages.GET("/docs", h.handleDocsPage)
	}

	admin := router.Group("/admin", h.requireLogin, h.requireAdmin)
	{
		admin.GET("", h.handleAdmin)
		admin.GET("/create-user", h.handleCreateUserPage)
		admin.POST("/create-user", h.handleCreateUser)
		admin.POST("/delete-user/:id", h.handleDeleteUser)
	}

	// API routes
	api := router.Group("/api", h.requireLogin)
	{
		api.GET("/status", h.handleAPIStatus)
		api.GET("/ai-status", h.handleAPIAIStatus)

		api.GET("/activity", h.handleAPIActivity)
		api.GET("/activity/dates", h.handleAPIActivityDates)
		api.GET("/activity/categories", h.handleAPIActivityCategories)
		api.POST("/activity/digest", h.handleAPIDigest)

		api.GET("/tasks", h.handleAPITasks)
		api.GET("/tasks/stats", h.handleAPITaskStats)
		api.POST("/tasks/add", h.handleAPITaskAdd)
		api.POST("/tasks/move", h.handleAPITaskMove)

		api.GET("/notes", h.handleAPINotes)
		api.POST("/notes/add", h.handleAPINoteAdd)
		api.POST("/notes/update", h.handleAPINoteUpdate)

		api.GET("/emails", h.handleAPIEmails)
		api.GET("/emails/check", h.handleAPIEmailCheck)

		api.GET("/memory", h.handleAPIMemory)
		api.GET("/system", h.handleAPISystem)

		api.GET("/docs", h.handleAPIDocs)
		api.GET("/docs/view", h.handleAPIDocView)

		api.GET("/calendar", h.handleAPICalendar)
	}

	return s
}

// ServeHTTP lets the server be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
