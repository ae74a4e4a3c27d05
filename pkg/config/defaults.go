package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that set them,
// in order of precedence.
var envBindings = map[string][]string{
	"server.host":             {"DASHBOARD_HOST", "FLASK_HOST"},
	"server.port":             {"DASHBOARD_PORT", "FLASK_PORT"},
	"server.debug":            {"DASHBOARD_DEBUG", "FLASK_DEBUG"},
	"server.secret_key":       {"SECRET_KEY"},
	"admin.username":          {"ADMIN_USERNAME"},
	"admin.password":          {"ADMIN_PASSWORD"},
	"workspace.dir":           {"WORKSPACE_DIR"},
	"workspace.todo_paths":    {"TODO_PATHS"},
	"data.dir":                {"DATA_DIR"},
	"data.database":           {"DATABASE_PATH"},
	"email.account":           {"EMAIL_ACCOUNT"},
	"email.password":          {"EMAIL_PASSWORD"},
	"email.watched_senders":   {"WATCHED_SENDERS"},
	"email.provider":          {"EMAIL_PROVIDER"},
	"agent.sessions_dir":      {"SESSIONS_DIR"},
	"agent.watched_ports":     {"WATCHED_PORTS"},
	"ai.provider":             {"AI_PROVIDER"},
	"ai.model":                {"AI_MODEL"},
	"ai.gemini_api_key":       {"GEMINI_API_KEY"},
	"ai.anthropic_api_key":    {"ANTHROPIC_API_KEY"},
	"ai.openai_api_key":       {"OPENAI_API_KEY"},
	"ai.moonshot_api_key":     {"MOONSHOT_API_KEY"},
	"bots.telegram_token":     {"TELEGRAM_TOKEN"},
	"bots.discord_token":      {"DISCORD_TOKEN"},
	"bots.allowed_users":      {"BOT_ALLOWED_USERS"},
	"google.credentials_file": {"GOOGLE_CREDENTIALS"},
	"google.subject":          {"GOOGLE_SUBJECT"},
	"google.drive_folder_id":  {"DRIVE_FOLDER_ID"},
	"google.inbox_folder_id":  {"DRIVE_INBOX_FOLDER_ID"},
	"google.calendar_id":      {"GOOGLE_CALENDAR_ID"},
	"ai.digest_schedule":      {"DIGEST_SCHEDULE"},
	"git.auto_commit":         {"GIT_AUTO_COMMIT"},
	"git.push":                {"GIT_PUSH"},
	"log.level":               {"LOG_LEVEL"},
	"log.format":              {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.secret_key", "change-me-in-production")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "chitty@2026")

	v.SetDefault("workspace.dir", "/home/labs/clawd")
	v.SetDefault("workspace.memory_dir", "")
	v.SetDefault("workspace.memory_file", "")
	v.SetDefault("workspace.heartbeat_state", "")
	v.SetDefault("workspace.todo_paths", []string{})
	v.SetDefault("workspace.extra_todo_paths", []string{})

	v.SetDefault("data.dir", "data")
	v.SetDefault("data.status_file", "")
	v.SetDefault("data.tasks_file", "")
	v.SetDefault("data.notes_file", "")
	v.SetDefault("data.activity_log", "")
	v.SetDefault("data.database", "")
	v.SetDefault("data.digests_dir", "")

	v.SetDefault("email.account", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.watched_senders", "")
	v.SetDefault("email.provider", "script")
	v.SetDefault("email.interpreter", "python3")
	v.SetDefault("email.monitor_script", "email_monitor.py")
	v.SetDefault("email.checker_script", "email_checker.py")
	v.SetDefault("email.timeout", 30*time.Second)
	v.SetDefault("email.poll_interval", 0)

	v.SetDefault("agent.process", "clawdbot")
	v.SetDefault("agent.gateway", "clawdbot-gateway")
	v.SetDefault("agent.sessions_dir", filepath.Join(home, ".clawdbot", "agents", "main", "sessions"))
	v.SetDefault("agent.active_window", 10*time.Minute)
	v.SetDefault("agent.watched_ports", "Job Scraper:5000")

	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.anthropic_api_key", "")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.moonshot_api_key", "")
	v.SetDefault("ai.digest_schedule", "")

	v.SetDefault("bots.telegram_token", "")
	v.SetDefault("bots.discord_token", "")
	v.SetDefault("bots.allowed_users", []string{})

	v.SetDefault("google.credentials_file", "")
	v.SetDefault("google.subject", "")
	v.SetDefault("google.drive_folder_id", "")
	v.SetDefault("google.inbox_folder_id", "")
	v.SetDefault("google.backup_interval", 0)
	v.SetDefault("google.watch_interval", 5*time.Minute)
	v.SetDefault("google.calendar_id", "")
	v.SetDefault("google.calendar_horizon", 24*time.Hour)
	v.SetDefault("google.calendar_refresh", 5*time.Minute)

	v.SetDefault("git.auto_commit", false)
	v.SetDefault("git.push", false)
	v.SetDefault("git.author_name", "Chitty Dashboard")
	v.SetDefault("git.author_email", "dashboard@localhost")
	v.SetDefault("git.ssh_key", filepath.Join(home, ".ssh", "id_rsa"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
