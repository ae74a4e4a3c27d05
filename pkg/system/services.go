package system

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// Service states.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
	StatusUnknown = "unknown"
)

type Service struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Icon   string `json:"icon"`
}

// Services reports the agent process, docker containers and watched ports.
func (p *Probe) Services(ctx context.Context) []Service {
	services := []Service{}

	agent := Service{Name: "Clawdbot", Icon: "smart_toy", Status: StatusUnknown}
	if proc, err := p.FindProcess(ctx, p.Agent); err == nil {
		agent.Status = StatusStopped
		if proc != nil {
			agent.Status = StatusRunning
		}
	} else {
		p.Logger.Warn("process scan failed", "error", err)
	}
	services = append(services, agent)

	docker := p.Docker
	if docker == nil {
		docker = dockerPS
	}
	if containers, err := docker(ctx); err == nil {
		services = append(services, containers...)
	} else {
		p.Logger.Debug("docker unavailable", "error", err)
	}

	if len(p.Ports) > 0 {
		listening, err := listeningPorts(ctx)
		for _, wp := range p.Ports {
			svc := Service{Name: fmt.Sprintf("%s (%d)", wp.Name, wp.Port), Icon: "work", Status: StatusUnknown}
			if err == nil {
				svc.Status = StatusStopped
				if listening[uint32(wp.Port)] {
					svc.Status = StatusRunning
				}
			}
			services = append(services, svc)
		}
	}
	return services
}

func dockerPS(ctx context.Context) ([]Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "docker", "ps", "--format", "{{.Names}}\t{{.Status}}")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return ParseDockerPS(out.String()), nil
}

// ParseDockerPS reads `docker ps --format "{{.Names}}\t{{.Status}}"` output.
func ParseDockerPS(out string) []Service {
	services := []Service{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		name, status, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		state := StatusStopped
		if strings.Contains(status, "Up") {
			state = StatusRunning
		}
		services = append(services, Service{Name: "Docker: " + name, Status: state, Icon: "cloud"})
	}
	return services
}

func listeningPorts(ctx context.Context) (map[uint32]bool, error) {
	conns, err := gnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, err
	}
	ports := map[uint32]bool{}
	for _, c := range conns {
		if c.Status == "LISTEN" {
			ports[c.Laddr.Port] = true
		}
	}
	return ports, nil
}
