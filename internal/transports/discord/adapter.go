package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"sharmoutabot/internal/core"
)

const sourceName = "discord"

// Session описывает часть discordgo.Session, которой пользуется адаптер.
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	UpdateGameStatus(idle int, name string) error
	HeartbeatLatency() time.Duration
}

// Options задает параметры Discord транспорта.
type Options struct {
	Token   string
	GuildID string
	Status  string
	// RequestTimeout ограничивает обработку одного вызова.
	RequestTimeout time.Duration
	Logger         *slog.Logger
	// Session подменяет реальное соединение; если nil, создается по Token.
	Session Session
}

// Adapter принимает slash-команды Discord и передает их диспетчеру.
type Adapter struct {
	session    Session
	dispatcher *core.Dispatcher
	lifecycle  *core.Lifecycle
	opts       Options
	logger     *slog.Logger

	mu       sync.Mutex
	running  bool
	baseCtx  context.Context
	removers []func()
}

// NewAdapter создает Discord адаптер. Соединение открывается в Start.
func NewAdapter(dispatcher *core.Dispatcher, lifecycle *core.Lifecycle, opts Options) (*Adapter, error) {
	if dispatcher == nil || lifecycle == nil {
		return nil, fmt.Errorf("discord: dispatcher and lifecycle are required: %w", core.ErrInvalidArguments)
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	sess := opts.Session
	if sess == nil {
		if strings.TrimSpace(opts.Token) == "" {
			return nil, errors.New("discord: bot token is empty")
		}
		s, err := discordgo.New("Bot " + opts.Token)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		s.Identify.Intents = discordgo.IntentsGuilds
		sess = s
	}
	return &Adapter{
		session:    sess,
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
		opts:       opts,
		logger:     lg.With("transport", sourceName),
		baseCtx:    context.Background(),
	}, nil
}

func (a *Adapter) Name() string { return sourceName }

// Start подписывается на события и открывает соединение с gateway.
// Контекст ограничивает время жизни обработчиков вызовов.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return nil
	}
	a.baseCtx = ctx
	a.removers = []func(){
		a.session.AddHandler(a.onReady),
		a.session.AddHandler(a.onInteraction),
	}
	if err := a.session.Open(); err != nil {
		a.removeHandlers()
		return fmt.Errorf("discord: open session: %w", err)
	}
	a.running = true
	a.logger.Info("discord session opened")
	return nil
}

// Stop закрывает соединение; повторный вызов ничего не делает.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return nil
	}
	a.running = false
	a.removeHandlers()
	if err := a.session.Close(); err != nil {
		return fmt.Errorf("discord: close session: %w", err)
	}
	a.logger.Info("discord session closed")
	return nil
}

func (a *Adapter) removeHandlers() {
	for _, remove := range a.removers {
		if remove != nil {
			remove()
		}
	}
	a.removers = nil
}

func (a *Adapter) baseContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.baseCtx
}

// onReady выполняет переход в Ready один раз; события после переподключения игнорируются.
func (a *Adapter) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if !a.lifecycle.MarkReady() {
		a.logger.Debug("ready event after reconnect ignored")
		return
	}
	appID := ""
	if r.User != nil {
		appID = r.User.ID
		a.logger.Info("logged in", "user", r.User.Username, "user_id", r.User.ID)
	}
	guilds := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		guilds = append(guilds, fmt.Sprintf("%s (id: %s)", g.Name, g.ID))
	}
	a.logger.Info("joined guilds", "count", len(guilds), "guilds", guilds)

	a.syncCommands(appID)

	if err := a.session.UpdateGameStatus(0, a.opts.Status); err != nil {
		a.logger.Warn("set presence failed", "err", err)
	}
	a.logger.Info("bot is operational")
}

// syncCommands публикует дескрипторы команд: в гильдию, если она задана, иначе глобально.
// Сбой синхронизации не останавливает бота.
func (a *Adapter) syncCommands(appID string) {
	scope := "global"
	if a.opts.GuildID != "" {
		scope = "guild " + a.opts.GuildID
	}
	cmds := ApplicationCommands(a.dispatcher.Registry().Commands())
	synced, err := a.session.ApplicationCommandBulkOverwrite(appID, a.opts.GuildID, cmds)
	if err != nil {
		a.logger.Error("command sync failed", "scope", scope, "err", err)
		return
	}
	names := make([]string, 0, len(synced))
	for _, c := range synced {
		names = append(names, c.Name)
	}
	a.logger.Info("commands synced", "scope", scope, "count", len(names), "commands", names)
}

// ApplicationCommands переводит дескрипторы реестра в формат Discord.
func ApplicationCommands(cmds []core.Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		ac := &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
		}
		for _, p := range c.Params {
			desc := p.Description
			if desc == "" {
				desc = p.Name
			}
			ac.Options = append(ac.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        p.Name,
				Description: desc,
				Required:    p.Required,
			})
		}
		out = append(out, ac)
	}
	return out
}

func (a *Adapter) onInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Interaction == nil || ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	inv := invocationFrom(ic.Interaction)
	inv.Latency = a.session.HeartbeatLatency()

	ctx, cancel := context.WithTimeout(a.baseContext(), a.opts.RequestTimeout)
	defer cancel()
	if err := a.dispatcher.Dispatch(ctx, inv, &interaction{session: a.session, raw: ic.Interaction}); err != nil {
		a.logger.Error("interaction reply failed", "command", inv.Command, "interaction_id", ic.ID, "err", err)
	}
}

func invocationFrom(i *discordgo.Interaction) core.Invocation {
	data := i.ApplicationCommandData()
	opts := make(map[string]string, len(data.Options))
	for _, o := range data.Options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			opts[o.Name] = o.StringValue()
			continue
		}
		opts[o.Name] = fmt.Sprint(o.Value)
	}
	inv := core.Invocation{
		ID:      i.ID,
		Command: data.Name,
		Options: opts,
		GuildID: i.GuildID,
		Source:  sourceName,
	}
	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user != nil {
		inv.UserID = user.ID
		inv.UserName = user.Username
		if i.Member != nil && i.Member.Nick != "" {
			inv.UserName = i.Member.Nick
		} else if user.GlobalName != "" {
			inv.UserName = user.GlobalName
		}
	}
	return inv
}

// interaction отвечает на один вызов через REST Discord.
type interaction struct {
	session Session
	raw     *discordgo.Interaction
}

func (i *interaction) Reply(ctx context.Context, reply core.Reply) error {
	return i.session.InteractionRespond(i.raw, toResponse(reply), discordgo.WithContext(ctx))
}

func toResponse(reply core.Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: reply.Content}
	if reply.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toEmbed(reply.Embed)}
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func toEmbed(e *core.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.ThumbnailURL != "" {
		me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
	}
	if e.FooterText != "" {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.FooterText}
	}
	return me
}
