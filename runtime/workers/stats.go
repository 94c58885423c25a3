package workers

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsWorker periodically logs room activity and the relay's own footprint.
type StatsWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewStatsWorker(log *slog.Logger, registry contract.IRegistry, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, registry: registry, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping stats")
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *StatsWorker) report(p *process.Process) {
	stats := w.registry.Stats()
	subscribers := 0
	for _, room := range stats.Rooms {
		subscribers += room.Subscribers
	}

	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
	}
	w.log.Info("Relay stats",
		"rooms", len(stats.Rooms),
		"members", stats.Members,
		"subscribers", subscribers,
		"rss_bytes", rss,
		"cpu_percent", cpu,
	)
}

// selfStats retrieves memory and CPU usage of the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
