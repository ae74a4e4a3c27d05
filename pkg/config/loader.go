package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/schedule"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/workspace"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "dashboard.yaml"

// Load builds the configuration. path names a YAML file; when empty,
// ./dashboard.yaml is used if present. Environment variables win over the
// file, which wins over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve fills derived paths and parses list settings.
func (c *Config) Resolve() error {
	ws := &c.Workspace
	if ws.Dir == "" {
		return fmt.Errorf("workspace dir is required")
	}
	if ws.MemoryDir == "" {
		ws.MemoryDir = filepath.Join(ws.Dir, "memory")
	}
	if ws.MemoryFile == "" {
		ws.MemoryFile = filepath.Join(ws.Dir, "MEMORY.md")
	}
	if ws.HeartbeatState == "" {
		ws.HeartbeatState = filepath.Join(ws.MemoryDir, "heartbeat-state.json")
	}
	if len(ws.TodoPaths) == 0 {
		ws.TodoPaths = []string{filepath.Join(ws.Dir, "TODO.md")}
	}

	d := &c.Data
	if abs, err := filepath.Abs(d.Dir); err == nil {
		d.Dir = abs
	}
	setDefault(&d.StatusFile, filepath.Join(d.Dir, "status.json"))
	setDefault(&d.TasksFile, filepath.Join(d.Dir, "tasks.json"))
	setDefault(&d.NotesFile, filepath.Join(d.Dir, "notes.json"))
	setDefault(&d.ActivityLog, filepath.Join(d.Dir, "activity.log"))
	setDefault(&d.Database, filepath.Join(d.Dir, "dashboard.db"))
	setDefault(&d.DigestsDir, filepath.Join(d.Dir, "digests"))

	if len(ws.DocsDirs) == 0 {
		ws.DocsDirs = []workspace.ScanDir{
			{Path: ws.MemoryDir, Label: "Memory", Pattern: "*.md"},
			{Path: ws.Dir, Label: "Workspace", Pattern: "*.md"},
			{Path: d.Dir, Label: "Dashboard Data", Pattern: "*"},
			{Path: d.DigestsDir, Label: "Digests", Pattern: "*.md"},
		}
	}

	c.Email.Senders = ParseSenders(c.Email.WatchedSenders)
	if c.Email.Provider != "script" && c.Email.Provider != "gmail" {
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	if _, err := ParsePorts(c.Agent.WatchedPorts); err != nil {
		return err
	}
	if c.AI.DigestSchedule != "" {
		if _, err := schedule.Parse(c.AI.DigestSchedule, nil); err != nil {
			return fmt.Errorf("ai.digest_schedule: %w", err)
		}
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// ParseSenders reads "email:context,email:context". Entries without a
// colon are skipped.
func ParseSenders(raw string) []Sender {
	senders := []Sender{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		email, context, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		senders = append(senders, Sender{Email: strings.TrimSpace(email), Context: strings.TrimSpace(context)})
	}
	return senders
}

// Port is a local port whose listener is reported as a service.
type Port struct {
	Name string
	Port int
}

// ParsePorts reads "name:port,name:port".
func ParsePorts(raw string) ([]Port, error) {
	ports := []Port{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		i := strings.LastIndex(entry, ":")
		if i < 0 {
			return nil, fmt.Errorf("watched port %q: want name:port", entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(entry[i+1:]))
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("watched port %q: invalid port", entry)
		}
		ports = append(ports, Port{Name: strings.TrimSpace(entry[:i]), Port: n})
	}
	return ports, nil
}

// Addr is the listen address of the web server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
