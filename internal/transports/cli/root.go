package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sharmoutabot/internal/app"
	"sharmoutabot/internal/config"
	"sharmoutabot/internal/core"
	"sharmoutabot/pkg/logger"
)

var errNoReply = errors.New("command produced no reply")

type rootOptions struct {
	configPath string
	version    string
}

// New создает корневую CLI-команду.
func New(version string) *cobra.Command {
	opts := &rootOptions{version: version}
	root := &cobra.Command{
		Use:           "sharmoutabot",
		Short:         "Discord-бот со справочными и биржевыми командами",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "путь к YAML-конфигу")

	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCommandsCmd(opts))
	root.AddCommand(newInvokeCmd(opts))

	return root
}

// build загружает конфиг и собирает приложение; логи идут в stderr, чтобы не смешиваться с выводом команд.
func (o *rootOptions) build(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	lg := logger.NewWithOptions(logger.Options{
		Level:  cfg.Agent.LogLevel,
		Format: cfg.Agent.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	return app.NewApp(cmd.Context(), cfg, lg, o.version)
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version)
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Подключиться к Discord и обслуживать команды",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
}

func newCommandsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Показать зарегистрированные команды",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range a.Registry.Commands() {
				params := make([]string, 0, len(c.Params))
				for _, p := range c.Params {
					params = append(params, "<"+p.Name+">")
				}
				fmt.Fprintf(out, "/%s %s\t%s\n", c.Name, strings.Join(params, " "), c.Description)
			}
			return nil
		},
	}
}

func newInvokeCmd(opts *rootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "invoke <command> [name=value ...]",
		Short: "Выполнить команду локально и вывести ответ в JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := parseOptions(args[1:])
			if err != nil {
				return err
			}
			a, err := opts.build(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.RequestTimeout())
			defer cancel()

			out := &jsonInteraction{enc: json.NewEncoder(cmd.OutOrStdout())}
			out.enc.SetIndent("", "  ")
			inv := core.Invocation{
				Command:  strings.TrimPrefix(args[0], "/"),
				Options:  options,
				UserID:   user,
				UserName: user,
				Source:   "cli",
			}
			if err := a.Dispatcher.Dispatch(ctx, inv, out); err != nil {
				return err
			}
			if !out.replied {
				return errNoReply
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "cli", "имя пользователя для вызова")
	return cmd
}

// parseOptions разбирает аргументы вида name=value.
func parseOptions(args []string) (map[string]string, error) {
	options := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("option %q must look like name=value", arg)
		}
		options[name] = value
	}
	return options, nil
}

// jsonInteraction печатает ответ диспетчера в stdout.
type jsonInteraction struct {
	enc     *json.Encoder
	replied bool
}

func (j *jsonInteraction) Reply(ctx context.Context, reply core.Reply) error {
	j.replied = true
	return j.enc.Encode(reply)
}
