package internal

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/process"
)

// ProcessStats reports the portal's own resource usage alongside Badger
// storage figures. The returned provider is sampled on every inspector
// page load, so it keeps no state between calls.
func ProcessStats(db *badger.DB, log *slog.Logger, startedAt time.Time) StatsProvider {
	pid := int32(os.Getpid())
	return func() map[string]any {
		stats := map[string]any{
			"Uptime": time.Since(startedAt).Round(time.Second).String(),
		}

		lsm, vlog := db.Size()
		stats["LSM size"] = fmt.Sprintf("%.1f KiB", float64(lsm)/1024)
		stats["Value log"] = fmt.Sprintf("%.1f KiB", float64(vlog)/1024)

		p, err := process.NewProcess(pid)
		if err != nil {
			log.Debug("Error while retrieving process", "pid", pid, "err", err)
			return stats
		}
		if cpu, err := p.CPUPercent(); err == nil {
			stats["CPU"] = fmt.Sprintf("%.1f%%", cpu)
		}
		if ram, err := p.MemoryPercent(); err == nil {
			stats["RAM"] = fmt.Sprintf("%.1f%%", ram)
		}
		return stats
	}
}
