// Package email runs the agent's email check and reports how email
// monitoring is set up.
package email

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/config"
)

// Check outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// Result is the outcome of one email check.
type Result struct {
	Status    string `json:"status"`
	Output    string `json:"output"`
	Error     string `json:"error"`
	CheckedAt string `json:"checked_at"`
}

// Checker runs an email check.
type Checker interface {
	Check(ctx context.Context) Result
}

// Report describes the email monitoring setup without running a check.
type Report struct {
	Account        string          `json:"account"`
	AccountMasked  string          `json:"account_masked"`
	WatchedSenders []config.Sender `json:"watched_senders"`
	Status         string          `json:"status"`
	MonitorScript  bool            `json:"monitor_script"`
	CheckerScript  bool            `json:"checker_script"`
}

// Service reports email status and runs checks.
type Service struct {
	Account       string
	Senders       []config.Sender
	Dir           string
	MonitorScript string
	CheckerScript string
	Checker       Checker
	Logger        *slog.Logger
}

func NewService(cfg config.EmailConfig, workspaceDir string, checker Checker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	senders := cfg.Senders
	if senders == nil {
		senders = []config.Sender{}
	}
	return &Service{
		Account:       cfg.Account,
		Senders:       senders,
		Dir:           workspaceDir,
		MonitorScript: cfg.MonitorScript,
		CheckerScript: cfg.CheckerScript,
		Checker:       checker,
		Logger:        logger,
	}
}

// Status reports the configured account and whether the scripts exist.
func (s *Service) Status() Report {
	status := "Not configured"
	if s.Account != "" {
		status = "Active"
	}
	return Report{
		Account:        s.Account,
		AccountMasked:  MaskEmail(s.Account),
		WatchedSenders: s.Senders,
		Status:         status,
		MonitorScript:  s.exists(s.MonitorScript),
		CheckerScript:  s.exists(s.CheckerScript),
	}
}

// Check runs the configured checker.
func (s *Service) Check(ctx context.Context) Result {
	res := s.Checker.Check(ctx)
	if res.Status == StatusSuccess {
		s.Logger.Info("email check finished", "status", res.Status)
	} else {
		s.Logger.Warn("email check failed", "status", res.Status, "error", res.Error)
	}
	return res
}

func (s *Service) exists(name string) bool {
	if name == "" {
		return false
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(s.Dir, name)
	}
	_, err := os.Stat(name)
	return err == nil
}

// MaskEmail hides most of the local part: "venkatesh@x.io" becomes
// "ven***@x.io". Strings without "@" are returned unchanged.
func MaskEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return addr
	}
	r := []rune(local)
	var masked string
	switch {
	case len(r) > 3:
		masked = string(r[:3]) + "***"
	case len(r) > 0:
		masked = string(r[:1]) + "***"
	default:
		masked = "***"
	}
	return masked + "@" + domain
}

func checkedAt(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return now().Format("2006-01-02 15:04:05")
}

func timedOut(timeout time.Duration, now func() time.Time) Result {
	secs := strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)
	return Result{
		Status:    StatusTimeout,
		Output:    "Email check timed out after " + secs + " seconds",
		CheckedAt: checkedAt(now),
	}
}
