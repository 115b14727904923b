package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sharmoutabot/internal/apis"
	"sharmoutabot/internal/commands"
	"sharmoutabot/internal/config"
	"sharmoutabot/internal/core"
	"sharmoutabot/internal/modules/host"
	"sharmoutabot/internal/transports/discord"
	"sharmoutabot/internal/transports/web"
	"sharmoutabot/pkg/logger"
)

// App агрегирует зависимости ядра.
type App struct {
	Registry   *core.Registry
	Dispatcher *core.Dispatcher
	Lifecycle  *core.Lifecycle
	Transports *core.TransportManager
	Config     config.Config
	Logger     *slog.Logger

	// discordSession подменяет соединение с Discord в тестах.
	discordSession discord.Session
}

// NewApp строит приложение: клиент внешних API, реестр модулей и диспетчер.
// Транспорты регистрируются в Serve.
func NewApp(ctx context.Context, cfg config.Config, lg *slog.Logger, version string) (*App, error) {
	if lg == nil {
		lg = logger.NewWithOptions(logger.Options{Level: cfg.Agent.LogLevel, Format: cfg.Agent.LogFormat})
	}
	client := apis.New(apis.Options{
		Keys: apis.Keys{
			Ninja:       cfg.APIs.NinjaKey,
			Finnhub:     cfg.APIs.FinnhubKey,
			Polygon:     cfg.APIs.PolygonKey,
			SolarSystem: cfg.APIs.SolarSystemKey,
		},
		Timeout:   time.Duration(cfg.APIs.TimeoutMS) * time.Millisecond,
		UserAgent: "sharmoutabot/" + version,
		Logger:    lg.With("component", "apis"),
	})

	r := core.NewRegistry()
	modules := []core.Module{
		commands.NewEducation(client),
		commands.NewFun(),
		commands.NewStocks(client),
		commands.NewWiki(client),
		commands.NewSystem(r, &host.Collector{}),
	}
	for _, m := range modules {
		if err := r.Register(ctx, m); err != nil {
			return nil, fmt.Errorf("register %s module: %w", m.Name(), err)
		}
	}

	return &App{
		Registry:   r,
		Dispatcher: core.NewDispatcher(r, lg.With("component", "dispatcher")),
		Lifecycle:  core.NewLifecycle(),
		Transports: core.NewTransportManager(),
		Config:     cfg,
		Logger:     lg,
	}, nil
}

func (a *App) registerTransports() error {
	dc, err := discord.NewAdapter(a.Dispatcher, a.Lifecycle, discord.Options{
		Token:          a.Config.Bot.Token,
		GuildID:        a.Config.Bot.GuildID,
		Status:         a.Config.Bot.Status,
		RequestTimeout: a.Config.RequestTimeout(),
		Logger:         a.Logger,
		Session:        a.discordSession,
	})
	if err != nil {
		return fmt.Errorf("create discord transport: %w", err)
	}
	if err := a.Transports.Register(dc); err != nil {
		return fmt.Errorf("register discord transport: %w", err)
	}
	if a.Config.Web.Enabled {
		webAdapter := web.NewAdapter(a.Dispatcher, a.Lifecycle, web.Config{
			ListenAddr:      a.Config.Web.ListenAddr,
			ReadTimeout:     time.Duration(a.Config.Web.ReadTimeoutMS) * time.Millisecond,
			WriteTimeout:    time.Duration(a.Config.Web.WriteTimeoutMS) * time.Millisecond,
			RequestTimeout:  time.Duration(a.Config.Web.RequestTimeoutMS) * time.Millisecond,
			ShutdownTimeout: time.Duration(a.Config.Web.ShutdownTimeoutS) * time.Second,
			MaxRequestBody:  a.Config.Web.MaxBodyBytes,
		}, a.Logger)
		if err := a.Transports.Register(webAdapter); err != nil {
			return fmt.Errorf("register web transport: %w", err)
		}
	}
	return nil
}

// Serve подключает транспорты и работает до отмены контекста.
// Без токена бота Serve завершается ошибкой конфигурации.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	logger.BridgeDiscordgo(a.Logger.With("component", "discordgo"))
	if err := a.registerTransports(); err != nil {
		return err
	}
	if err := a.Transports.StartAll(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Transports.StopAll(stopCtx)
		return fmt.Errorf("start transports: %w", err)
	}
	a.Logger.Info("transports started", "transports", a.Transports.Names(), "commands", len(a.Registry.Commands()))

	<-ctx.Done()
	a.Logger.Info("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Transports.StopAll(stopCtx); err != nil {
		return fmt.Errorf("stop transports: %w", err)
	}
	return nil
}
