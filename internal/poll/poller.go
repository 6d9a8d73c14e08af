package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Snapshot bundles the most recent poll results for the rendering layer.
type Snapshot struct {
	Git       GitInfo
	GitOK     bool
	MCP       []MCPServer
	UpdatedAt time.Time
}

// Poller refreshes git and MCP state on fixed intervals. It runs on its
// own goroutine, independent of the event consume loop, and exposes
// results only as immutable snapshots.
type Poller struct {
	dir          string
	settingsPath string
	gitInterval  time.Duration
	mcpInterval  time.Duration
	log          *slog.Logger

	mu   sync.Mutex
	snap Snapshot
}

// New creates a poller for the working directory dir. Zero intervals
// disable the corresponding poll.
func New(dir, settingsPath string, gitInterval, mcpInterval time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		dir:          dir,
		settingsPath: settingsPath,
		gitInterval:  gitInterval,
		mcpInterval:  mcpInterval,
		log:          log,
	}
}

// Run polls until ctx is cancelled. It performs one immediate refresh of
// each enabled source before settling into the intervals.
func (p *Poller) Run(ctx context.Context) {
	var gitC, mcpC <-chan time.Time

	if p.gitInterval > 0 {
		p.refreshGit(ctx)
		t := time.NewTicker(p.gitInterval)
		defer t.Stop()
		gitC = t.C
	}
	if p.mcpInterval > 0 {
		p.refreshMCP()
		t := time.NewTicker(p.mcpInterval)
		defer t.Stop()
		mcpC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-gitC:
			p.refreshGit(ctx)
		case <-mcpC:
			p.refreshMCP()
		}
	}
}

func (p *Poller) refreshGit(ctx context.Context) {
	info, err := FetchGit(ctx, p.dir)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.snap.GitOK = false
		return
	}
	p.snap.Git = info
	p.snap.GitOK = true
	p.snap.UpdatedAt = time.Now()
}

func (p *Poller) refreshMCP() {
	servers, err := FetchMCP(p.settingsPath)
	if err != nil {
		p.log.Warn("mcp settings read failed", "path", p.settingsPath, "err", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.MCP = servers
	p.snap.UpdatedAt = time.Now()
}

// Snapshot returns the latest poll results.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.snap
	out.MCP = make([]MCPServer, len(p.snap.MCP))
	copy(out.MCP, p.snap.MCP)
	return out
}
