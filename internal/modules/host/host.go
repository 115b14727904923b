package host

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats содержит снимок состояния узла, на котором работает бот.
type Stats struct {
	Hostname        string
	Platform        string
	PlatformVersion string
	Kernel          string
	Uptime          time.Duration
	BootTime        time.Time
	MemTotal        uint64
	MemUsed         uint64
	MemUsedPct      float64
	Load1           float64
	Load5           float64
	Load15          float64
	Goroutines      int
}

// Collector собирает базовые метрики узла.
type Collector struct{}

// Collect читает сведения о хосте, памяти и нагрузке.
// Средняя нагрузка недоступна на части платформ; ее отсутствие не считается ошибкой.
func (c *Collector) Collect(ctx context.Context) (Stats, error) {
	hInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("host info: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("memory info: %w", err)
	}
	st := Stats{
		Hostname:        hInfo.Hostname,
		Platform:        hInfo.Platform,
		PlatformVersion: hInfo.PlatformVersion,
		Kernel:          hInfo.KernelVersion,
		Uptime:          time.Duration(hInfo.Uptime) * time.Second,
		BootTime:        time.Unix(int64(hInfo.BootTime), 0).UTC(),
		MemTotal:        vm.Total,
		MemUsed:         vm.Used,
		MemUsedPct:      vm.UsedPercent,
		Goroutines:      runtime.NumGoroutine(),
	}
	if ld, err := load.AvgWithContext(ctx); err == nil {
		st.Load1, st.Load5, st.Load15 = ld.Load1, ld.Load5, ld.Load15
	}
	return st, nil
}
