// Package config loads dashboard settings from defaults, an optional YAML
// file and environment variables.
package config

import (
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// Config represents the full dashboard configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Data      DataConfig      `mapstructure:"data"`
	Email     EmailConfig     `mapstructure:"email"`
	Agent     AgentConfig     `mapstructure:"agent"`
	AI        AIConfig        `mapstructure:"ai"`
	Bots      BotsConfig      `mapstructure:"bots"`
	Google    GoogleConfig    `mapstructure:"google"`
	Git       GitConfig       `mapstructure:"git"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Debug     bool   `mapstructure:"debug"`
	SecretKey string `mapstructure:"secret_key"`
}

// AdminConfig is the account created on first start when no users exist.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// WorkspaceConfig points at the agent's workspace. Empty paths are derived
// from Dir.
type WorkspaceConfig struct {
	Dir            string              `mapstructure:"dir"`
	MemoryDir      string              `mapstructure:"memory_dir"`
	MemoryFile     string              `mapstructure:"memory_file"`
	HeartbeatState string              `mapstructure:"heartbeat_state"`
	TodoPaths      []string            `mapstructure:"todo_paths"`
	ExtraTodoPaths []string            `mapstructure:"extra_todo_paths"`
	DocsDirs       []workspace.ScanDir `mapstructure:"docs_dirs"`
}

// DataConfig locates the dashboard's own files. Empty paths are derived
// from Dir.
type DataConfig struct {
	Dir         string `mapstructure:"dir"`
	StatusFile  string `mapstructure:"status_file"`
	TasksFile   string `mapstructure:"tasks_file"`
	NotesFile   string `mapstructure:"notes_file"`
	ActivityLog string `mapstructure:"activity_log"`
	Database    string `mapstructure:"database"`
	DigestsDir  string `mapstructure:"digests_dir"`
}

// Sender is a watched email sender.
type Sender struct {
	Email   string `json:"email"`
	Context string `json:"context"`
}

type EmailConfig struct {
	Account        string        `mapstructure:"account"`
	Password       string        `mapstructure:"password"`
	WatchedSenders string        `mapstructure:"watched_senders"`
	Senders        []Sender      `mapstructure:"-"`
	Provider       string        `mapstructure:"provider"` // script or gmail
	Interpreter    string        `mapstructure:"interpreter"`
	MonitorScript  string        `mapstructure:"monitor_script"`
	CheckerScript  string        `mapstructure:"checker_script"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
}

// AgentConfig describes how to find the agent's processes and sessions.
type AgentConfig struct {
	Process      string        `mapstructure:"process"`
	Gateway      string        `mapstructure:"gateway"`
	SessionsDir  string        `mapstructure:"sessions_dir"`
	ActiveWindow time.Duration `mapstructure:"active_window"`
	WatchedPorts string        `mapstructure:"watched_ports"` // "name:port,name:port"
}

type AIConfig struct {
	Provider        string `mapstructure:"provider"` // gemini, anthropic, openai, moonshot
	Model           string `mapstructure:"model"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	MoonshotAPIKey  string `mapstructure:"moonshot_api_key"`
	DigestSchedule  string `mapstructure:"digest_schedule"` // cron, "@daily" or "@every 6h"; empty disables
}

type BotsConfig struct {
	TelegramToken string   `mapstructure:"telegram_token"`
	DiscordToken  string   `mapstructure:"discord_token"`
	AllowedUsers  []string `mapstructure:"allowed_users"` // empty allows everyone
}

type GoogleConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	Subject         string        `mapstructure:"subject"`
	DriveFolderID   string        `mapstructure:"drive_folder_id"`
	InboxFolderID   string        `mapstructure:"inbox_folder_id"`
	BackupInterval  time.Duration `mapstructure:"backup_interval"`
	WatchInterval   time.Duration `mapstructure:"watch_interval"`
	CalendarID      string        `mapstructure:"calendar_id"`
	CalendarHorizon time.Duration `mapstructure:"calendar_horizon"`
	CalendarRefresh time.Duration `mapstructure:"calendar_refresh"`
}

// GitConfig controls committing the workspace after a TODO file edit.
type GitConfig struct {
	AutoCommit  bool   `mapstructure:"auto_commit"`
	Push        bool   `mapstructure:"push"`
	AuthorName  string `mapstructure:"author_name"`
	AuthorEmail string `mapstructure:"author_email"`
	SSHKey      string `mapstructure:"ssh_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}
