package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"sharmoutabot/internal/core"
)

type fakeSession struct {
	mu        sync.Mutex
	handlers  int
	opened    bool
	closed    bool
	openErr   error
	syncErr   error
	responses []*discordgo.InteractionResponse
	synced    []*discordgo.ApplicationCommand
	syncApp   string
	syncGuild string
	status    []string
}

func (f *fakeSession) AddHandler(handler interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.handlers--
	}
}

func (f *fakeSession) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncApp, f.syncGuild = appID, guildID
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	f.synced = commands
	return commands, nil
}

func (f *fakeSession) UpdateGameStatus(idle int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = append(f.status, name)
	return nil
}

func (f *fakeSession) HeartbeatLatency() time.Duration { return 87 * time.Millisecond }

type testModule struct{}

func (testModule) Name() string                   { return "test" }
func (testModule) Init(ctx context.Context) error { return nil }
func (testModule) Commands() []core.Command {
	return []core.Command{
		{
			Name:        "echo",
			Description: "Echo text back",
			Params:      []core.Param{{Name: "text", Description: "What to echo", Type: core.ParamString, Required: true}},
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				return core.Text(inv.UserName + ": " + inv.Option("text")), nil
			},
		},
		{
			Name:        "card",
			Description: "Private embed",
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				return core.Reply{
					Ephemeral: true,
					Embed: &core.Embed{
						Title:        "Card",
						URL:          "https://example.com",
						Color:        0x1E90FF,
						Fields:       []core.Field{{Name: "A", Value: "1"}},
						ThumbnailURL: "https://example.com/t.png",
						FooterText:   "footer",
					},
				}, nil
			},
		},
		{
			Name:        "latency",
			Description: "Latency",
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				return core.Text(inv.Latency.String()), nil
			},
		},
	}
}

func newTestAdapter(t *testing.T, guildID string) (*Adapter, *fakeSession, *core.Lifecycle) {
	t.Helper()
	reg := core.NewRegistry()
	if err := reg.Register(context.Background(), testModule{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess := &fakeSession{}
	lc := core.NewLifecycle()
	a, err := NewAdapter(core.NewDispatcher(reg, nil), lc, Options{
		GuildID: guildID,
		Status:  "/help to view commands",
		Session: sess,
	})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return a, sess, lc
}

func commandEvent(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i-1",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g-1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u-1", Username: "alice"}},
		Data:    discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func TestNewAdapterRequiresToken(t *testing.T) {
	reg := core.NewRegistry()
	_, err := NewAdapter(core.NewDispatcher(reg, nil), core.NewLifecycle(), Options{})
	if err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestStartStop(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !sess.opened || sess.handlers != 2 {
		t.Fatalf("expected opened session with 2 handlers, got opened=%v handlers=%d", sess.opened, sess.handlers)
	}
	if err := a.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !sess.closed || sess.handlers != 0 {
		t.Fatalf("expected closed session without handlers, got closed=%v handlers=%d", sess.closed, sess.handlers)
	}
	if err := a.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestStartOpenFailure(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	sess.openErr = errors.New("invalid token")
	if err := a.Start(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	if sess.handlers != 0 {
		t.Fatalf("handlers must be removed after failed open, got %d", sess.handlers)
	}
}

func TestReadyTransitionsOnce(t *testing.T) {
	a, sess, lc := newTestAdapter(t, "g-42")
	ready := &discordgo.Ready{
		User:   &discordgo.User{ID: "app-1", Username: "sharmouta"},
		Guilds: []*discordgo.Guild{{ID: "g-42", Name: "Test Guild"}},
	}
	a.onReady(nil, ready)
	a.onReady(nil, ready)

	if !lc.Ready() {
		t.Fatalf("lifecycle should be ready")
	}
	if diff := cmp.Diff([]string{"/help to view commands"}, sess.status); diff != "" {
		t.Fatalf("presence must be set once (-want +got):\n%s", diff)
	}
	if sess.syncApp != "app-1" || sess.syncGuild != "g-42" {
		t.Fatalf("unexpected sync target: app=%q guild=%q", sess.syncApp, sess.syncGuild)
	}
	if len(sess.synced) != 3 {
		t.Fatalf("expected 3 synced commands, got %d", len(sess.synced))
	}
}

func TestReadySyncFailureNotFatal(t *testing.T) {
	a, sess, lc := newTestAdapter(t, "")
	sess.syncErr = errors.New("missing access")
	a.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "app-1"}})
	if !lc.Ready() || len(sess.status) != 1 {
		t.Fatalf("bot should become operational despite sync failure")
	}
	if sess.syncGuild != "" {
		t.Fatalf("expected global sync, got guild %q", sess.syncGuild)
	}
}

func TestApplicationCommands(t *testing.T) {
	got := ApplicationCommands(testModule{}.Commands())
	if len(got) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(got))
	}
	echo := got[0]
	if echo.Name != "echo" || echo.Description != "Echo text back" || len(echo.Options) != 1 {
		t.Fatalf("unexpected command: %#v", echo)
	}
	opt := echo.Options[0]
	if opt.Type != discordgo.ApplicationCommandOptionString || opt.Name != "text" || opt.Description != "What to echo" || !opt.Required {
		t.Fatalf("unexpected option: %#v", opt)
	}
	if len(got[1].Options) != 0 {
		t.Fatalf("card takes no options")
	}
}

func TestInteractionTextReply(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	a.onInteraction(nil, commandEvent("echo", &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "text",
		Type:  discordgo.ApplicationCommandOptionString,
		Value: "hello",
	}))
	if len(sess.responses) != 1 {
		t.Fatalf("expected one response, got %d", len(sess.responses))
	}
	resp := sess.responses[0]
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Fatalf("unexpected response type %v", resp.Type)
	}
	if resp.Data.Content != "alice: hello" || resp.Data.Flags != 0 || resp.Data.Embeds != nil {
		t.Fatalf("unexpected response data: %#v", resp.Data)
	}
}

func TestInteractionEphemeralEmbed(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	a.onInteraction(nil, commandEvent("card"))
	if len(sess.responses) != 1 {
		t.Fatalf("expected one response, got %d", len(sess.responses))
	}
	data := sess.responses[0].Data
	if data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("expected ephemeral flag, got %v", data.Flags)
	}
	want := []*discordgo.MessageEmbed{{
		Title:     "Card",
		URL:       "https://example.com",
		Color:     0x1E90FF,
		Fields:    []*discordgo.MessageEmbedField{{Name: "A", Value: "1"}},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: "https://example.com/t.png"},
		Footer:    &discordgo.MessageEmbedFooter{Text: "footer"},
	}}
	if diff := cmp.Diff(want, data.Embeds); diff != "" {
		t.Fatalf("unexpected embeds (-want +got):\n%s", diff)
	}
}

func TestInteractionCarriesLatency(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	a.onInteraction(nil, commandEvent("latency"))
	if got := sess.responses[0].Data.Content; got != "87ms" {
		t.Fatalf("unexpected latency reply: %q", got)
	}
}

func TestMissingOptionIsPrivate(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	a.onInteraction(nil, commandEvent("echo"))
	if len(sess.responses) != 1 || sess.responses[0].Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Fatalf("expected one private response, got %#v", sess.responses)
	}
}

func TestNonCommandInteractionIgnored(t *testing.T) {
	a, sess, _ := newTestAdapter(t, "")
	ev := commandEvent("echo")
	ev.Type = discordgo.InteractionPing
	a.onInteraction(nil, ev)
	if len(sess.responses) != 0 {
		t.Fatalf("expected no responses, got %d", len(sess.responses))
	}
}

func TestInvocationFromDirectMessage(t *testing.T) {
	inv := invocationFrom(&discordgo.Interaction{
		ID:   "i-2",
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "u-2", Username: "bob", GlobalName: "Bobby"},
		Data: discordgo.ApplicationCommandInteractionData{Name: "ping"},
	})
	if inv.UserID != "u-2" || inv.UserName != "Bobby" || inv.Source != "discord" || inv.Command != "ping" {
		t.Fatalf("unexpected invocation: %#v", inv)
	}
}
