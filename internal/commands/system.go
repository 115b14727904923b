package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"sharmoutabot/internal/core"
	"sharmoutabot/internal/modules/host"
)

// HostStats возвращает снимок состояния узла.
type HostStats interface {
	Collect(ctx context.Context) (host.Stats, error)
}

// System объединяет служебные команды бота: справку и состояние узла.
type System struct {
	registry *core.Registry
	stats    HostStats
}

// NewSystem создает модуль system. Справка строится по registry в момент вызова,
// поэтому в нее попадают и модули, зарегистрированные позже.
func NewSystem(registry *core.Registry, stats HostStats) *System {
	return &System{registry: registry, stats: stats}
}

func (m *System) Name() string { return "system" }

func (m *System) Init(ctx context.Context) error {
	if m.registry == nil {
		return fmt.Errorf("system module: registry is nil: %w", core.ErrInvalidArguments)
	}
	return nil
}

func (m *System) Commands() []core.Command {
	cmds := []core.Command{
		{
			Name:        "help",
			Description: "List available commands",
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				return helpReply(m.registry.Commands()), nil
			},
		},
	}
	if m.stats != nil {
		cmds = append(cmds, core.Command{
			Name:        "status",
			Description: "Show host status of the bot",
			Handler:     m.status,
		})
	}
	return cmds
}

func helpReply(cmds []core.Command) core.Reply {
	e := &core.Embed{Title: "Available commands", Color: colorDodgerBlue}
	for _, c := range cmds {
		name := "/" + c.Name
		for _, p := range c.Params {
			name += " <" + p.Name + ">"
		}
		e.AddField(name, c.Description, false)
	}
	return embedReply(e)
}

func (m *System) status(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	st, err := m.stats.Collect(ctx)
	if err != nil {
		return core.Reply{}, fmt.Errorf("collect host stats: %w", err)
	}
	return statusReply(st), nil
}

func statusReply(st host.Stats) core.Reply {
	platform := strings.TrimSpace(st.Platform + " " + st.PlatformVersion)
	e := &core.Embed{Title: "Bot status", Color: colorTeal}
	e.AddField("Host", st.Hostname, false).
		AddField("Platform", platform, false).
		AddField("Uptime", st.Uptime.String(), false).
		AddField("Memory", fmt.Sprintf("%s / %s (%.1f%%)", humanize.IBytes(st.MemUsed), humanize.IBytes(st.MemTotal), st.MemUsedPct), false).
		AddField("Load", fmt.Sprintf("%.2f %.2f %.2f", st.Load1, st.Load5, st.Load15), false)
	return embedReply(e)
}
