package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Options задает формат и уровень логгера.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New returns JSON logger with level taken from LOG_LEVEL (default info).
func New() *slog.Logger {
	return NewWithOptions(Options{Level: os.Getenv("LOG_LEVEL")})
}

// NewWithOptions строит логгер по явным параметрам; пустой уровень означает info.
func NewWithOptions(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(out, hopts)
	} else {
		h = slog.NewJSONHandler(out, hopts)
	}
	return slog.New(h)
}

// ParseLevel разбирает уровень; при ошибке возвращает info.
func ParseLevel(v string) slog.Level {
	level := slog.LevelInfo
	if v == "" {
		return level
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(v)); err == nil {
		level = parsed
	}
	return level
}

// BridgeDiscordgo направляет внутренний лог discordgo в slog.
func BridgeDiscordgo(lg *slog.Logger) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		lg.Log(context.Background(), discordLevel(msgL), fmt.Sprintf(format, a...), "component", "discordgo")
	}
}

func discordLevel(l int) slog.Level {
	switch l {
	case discordgo.LogError:
		return slog.LevelError
	case discordgo.LogWarning:
		return slog.LevelWarn
	case discordgo.LogInformational:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
