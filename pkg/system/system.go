// Package system reports host metrics and the state of the services the
// agent depends on.
package system

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Info is a snapshot of the host.
type Info struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Runtime  string `json:"runtime"`
	Uptime   string `json:"uptime"`
	BootTime string `json:"boot_time"`
	CPU      CPU    `json:"cpu"`
	Memory   Usage  `json:"memory"`
	Disk     Usage  `json:"disk"`
}

type CPU struct {
	Percent float64 `json:"percent"`
	Cores   int     `json:"cores"`
	FreqMHz float64 `json:"freq"`
}

type Usage struct {
	Total     string  `json:"total"`
	Used      string  `json:"used"`
	Available string  `json:"available,omitempty"`
	Free      string  `json:"free,omitempty"`
	Percent   float64 `json:"percent"`
}

// Process is a running process found by command line.
type Process struct {
	PID     int32
	Started time.Time
}

// WatchedPort is a local port whose listener is reported as a service.
type WatchedPort struct {
	Name string
	Port int
}

// Probe collects host and service information.
type Probe struct {
	Gateway  string // command-line pattern of the agent gateway
	Agent    string // command-line pattern of any agent process
	Ports    []WatchedPort
	DiskPath string
	Logger   *slog.Logger

	// Docker lists containers; nil uses the docker CLI.
	Docker func(ctx context.Context) ([]Service, error)
}

func NewProbe(gateway, agent string, ports []WatchedPort, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{Gateway: gateway, Agent: agent, Ports: ports, DiskPath: "/", Logger: logger}
}

// Info collects a host snapshot. Uptime is that of the gateway process
// when it is running, else the host's.
func (p *Probe) Info(ctx context.Context) (*Info, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}
	boot := time.Unix(int64(hi.BootTime), 0)

	info := &Info{
		Hostname: hi.Hostname,
		OS:       strings.TrimSpace(hi.OS + " " + hi.KernelVersion),
		Arch:     hi.KernelArch,
		Runtime:  runtime.Version(),
		BootTime: boot.Format("2006-01-02 15:04:05"),
	}
	if info.Hostname == "" {
		info.Hostname, _ = os.Hostname()
	}
	if info.Arch == "" {
		info.Arch = runtime.GOARCH
	}

	since := boot
	if p.Gateway != "" {
		if proc, err := p.FindProcess(ctx, p.Gateway); err == nil && proc != nil {
			since = proc.Started
		}
	}
	info.Uptime = FormatUptime(time.Since(since))

	if pct, err := cpu.PercentWithContext(ctx, 500*time.Millisecond, false); err == nil && len(pct) > 0 {
		info.CPU.Percent = round1(pct[0])
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.CPU.Cores = n
	}
	if ci, err := cpu.InfoWithContext(ctx); err == nil && len(ci) > 0 {
		info.CPU.FreqMHz = math.Round(ci[0].Mhz)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Memory = Usage{
			Total:     humanize.IBytes(vm.Total),
			Used:      humanize.IBytes(vm.Used),
			Available: humanize.IBytes(vm.Available),
			Percent:   round1(vm.UsedPercent),
		}
	} else {
		p.Logger.Warn("memory stats unavailable", "error", err)
	}

	if du, err := disk.UsageWithContext(ctx, p.DiskPath); err == nil {
		info.Disk = Usage{
			Total:   humanize.IBytes(du.Total),
			Used:    humanize.IBytes(du.Used),
			Free:    humanize.IBytes(du.Free),
			Percent: round1(du.UsedPercent),
		}
	} else {
		p.Logger.Warn("disk stats unavailable", "path", p.DiskPath, "error", err)
	}

	return info, nil
}

// FindProcess returns the first process whose command line contains
// pattern, or nil when none does.
func (p *Probe) FindProcess(ctx context.Context, pattern string) (*Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	self := int32(os.Getpid())
	for _, proc := range procs {
		if proc.Pid == self {
			continue
		}
		cmdline, err := proc.CmdlineWithContext(ctx)
		if err != nil || !strings.Contains(cmdline, pattern) {
			continue
		}
		found := &Process{PID: proc.Pid}
		if ms, err := proc.CreateTimeWithContext(ctx); err == nil {
			found.Started = time.UnixMilli(ms)
		}
		return found, nil
	}
	return nil, nil
}

// FormatUptime renders d as "Xd Yh Zm".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%dd %dh %dm", mins/1440, (mins%1440)/60, mins%60)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
