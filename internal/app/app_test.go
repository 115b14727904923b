package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"sharmoutabot/internal/config"
)

type nopSession struct {
	opened chan struct{}
}

func (s *nopSession) AddHandler(handler interface{}) func() { return func() {} }
func (s *nopSession) Open() error {
	close(s.opened)
	return nil
}
func (s *nopSession) Close() error { return nil }
func (s *nopSession) InteractionRespond(*discordgo.Interaction, *discordgo.InteractionResponse, ...discordgo.RequestOption) error {
	return nil
}
func (s *nopSession) ApplicationCommandBulkOverwrite(string, string, []*discordgo.ApplicationCommand, ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return nil, nil
}
func (s *nopSession) UpdateGameStatus(int, string) error { return nil }
func (s *nopSession) HeartbeatLatency() time.Duration   { return 0 }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAppRegistersAllCommands(t *testing.T) {
	a, err := NewApp(context.Background(), config.Default(), quietLogger(), "test")
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	want := []string{
		"fact", "word_of_the_day", "celestial", "country", "quran",
		"ping", "sharmouta",
		"stock", "stock_info", "symbol_search", "dividends",
		"wiki", "random_wiki", "trending_wiki", "wiki_categories", "wiki_sections",
		"help", "status",
	}
	for _, name := range want {
		if _, ok := a.Registry.Lookup(name); !ok {
			t.Fatalf("command %s is not registered", name)
		}
	}
	if got := len(a.Registry.Commands()); got != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), got)
	}
	if mods := a.Registry.Modules(); len(mods) != 5 {
		t.Fatalf("unexpected modules: %v", mods)
	}
}

func TestServeRequiresToken(t *testing.T) {
	a, err := NewApp(context.Background(), config.Default(), quietLogger(), "test")
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Serve(context.Background()); !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Bot.Token = "token"
	a, err := NewApp(context.Background(), cfg, quietLogger(), "test")
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	sess := &nopSession{opened: make(chan struct{})}
	a.discordSession = sess

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	select {
	case <-sess.opened:
	case <-time.After(2 * time.Second):
		t.Fatal("discord session was not opened")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	if names := a.Transports.Names(); len(names) != 1 || names[0] != "discord" {
		t.Fatalf("unexpected transports: %v", names)
	}
}
