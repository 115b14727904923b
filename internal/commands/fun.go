package commands

import (
	"context"
	"fmt"
	"math/rand/v2"

	"sharmoutabot/internal/core"
)

// Fun объединяет развлекательные команды без внешних сервисов.
type Fun struct {
	// pick возвращает случайное число в [0, n).
	pick func(n int) int
}

// NewFun создает модуль fun.
func NewFun() *Fun {
	return &Fun{pick: rand.IntN}
}

func (m *Fun) Name() string { return "fun" }

func (m *Fun) Init(ctx context.Context) error { return nil }

func (m *Fun) Commands() []core.Command {
	return []core.Command{
		{
			Name:        "ping",
			Description: "Check the bot's latency",
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				return core.Text(fmt.Sprintf("Pong! %dms", inv.Latency.Milliseconds())), nil
			},
		},
		{
			Name:        "sharmouta",
			Description: "Find out how sharmouta you are",
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				who := inv.UserName
				if who == "" {
					who = "You"
				}
				return core.Text(fmt.Sprintf("%s is %d%% sharmouta", who, m.pick(101))), nil
			},
		},
	}
}
