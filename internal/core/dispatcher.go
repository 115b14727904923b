package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateCommand = errors.New("command already registered")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrNoReply сообщает диспетчеру, что сбой только логируется и ответ не отправляется.
	ErrNoReply = errors.New("failure is logged without reply")
	// ErrAlreadyReplied возвращается при попытке ответить на вызов повторно.
	ErrAlreadyReplied = errors.New("interaction already replied")

	errModuleExists = errors.New("module already registered")
)

var commandNameRe = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// Registry хранит зарегистрированные модули и их команды.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string]Module
	commands map[string]Command
	order    []string
}

// NewRegistry создает пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		modules:  make(map[string]Module),
		commands: make(map[string]Command),
	}
}

// Register инициализирует модуль и добавляет его команды; имена должны быть уникальны.
// При ошибке реестр не меняется.
func (r *Registry) Register(ctx context.Context, module Module) error {
	if module == nil {
		return fmt.Errorf("module is nil: %w", ErrInvalidArguments)
	}
	name := module.Name()
	if name == "" {
		return fmt.Errorf("module name is empty: %w", ErrInvalidArguments)
	}
	if err := module.Init(ctx); err != nil {
		return fmt.Errorf("init %s: %w", name, err)
	}
	cmds := module.Commands()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("%s: %w", name, errModuleExists)
	}
	seen := make(map[string]struct{}, len(cmds))
	for _, cmd := range cmds {
		if err := validateCommand(cmd); err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
		if _, dup := seen[cmd.Name]; dup {
			return fmt.Errorf("module %s: %s: %w", name, cmd.Name, ErrDuplicateCommand)
		}
		if _, exists := r.commands[cmd.Name]; exists {
			return fmt.Errorf("module %s: %s: %w", name, cmd.Name, ErrDuplicateCommand)
		}
		seen[cmd.Name] = struct{}{}
	}
	r.modules[name] = module
	for _, cmd := range cmds {
		r.commands[cmd.Name] = cmd
		r.order = append(r.order, cmd.Name)
	}
	return nil
}

func validateCommand(cmd Command) error {
	if !commandNameRe.MatchString(cmd.Name) {
		return fmt.Errorf("command name %q: %w", cmd.Name, ErrInvalidArguments)
	}
	if cmd.Description == "" {
		return fmt.Errorf("command %s has no description: %w", cmd.Name, ErrInvalidArguments)
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %s has no handler: %w", cmd.Name, ErrInvalidArguments)
	}
	params := make(map[string]struct{}, len(cmd.Params))
	for _, p := range cmd.Params {
		if !commandNameRe.MatchString(p.Name) {
			return fmt.Errorf("command %s: param name %q: %w", cmd.Name, p.Name, ErrInvalidArguments)
		}
		if _, dup := params[p.Name]; dup {
			return fmt.Errorf("command %s: duplicate param %s: %w", cmd.Name, p.Name, ErrInvalidArguments)
		}
		params[p.Name] = struct{}{}
	}
	return nil
}

// Lookup возвращает команду по имени.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands возвращает команды в порядке регистрации.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Modules возвращает отсортированный список модулей.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatcher сопоставляет вызов с командой и гарантирует не более одного ответа.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher создает диспетчер поверх реестра.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Registry возвращает реестр команд диспетчера.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch исполняет вызов и отправляет ответ через ic.
// Возвращает ошибку только если отправить ответ не удалось.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation, ic Interaction) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	once := &onceInteraction{next: ic}
	lg := d.logger.With(
		"command", inv.Command,
		"invocation_id", inv.ID,
		"source", inv.Source,
		"user_id", inv.UserID,
	)
	start := time.Now()

	cmd, ok := d.registry.Lookup(inv.Command)
	if !ok {
		lg.Warn("unknown command")
		return d.send(ctx, lg, once, Private(fmt.Sprintf("Unknown command: /%s", inv.Command)))
	}
	if missing := missingParams(cmd, inv); len(missing) > 0 {
		lg.Warn("missing required params", "params", missing)
		return d.send(ctx, lg, once, Private(fmt.Sprintf("Missing required option(s) for /%s: %v", cmd.Name, missing)))
	}

	reply, err := runHandler(ctx, cmd.Handler, inv)
	duration := time.Since(start)
	switch {
	case errors.Is(err, ErrNoReply):
		lg.Error("command failed, no reply sent", "err", err, "duration", duration)
		return nil
	case err != nil:
		lg.Error("command failed", "err", err, "duration", duration)
		return d.send(ctx, lg, once, fallbackReply(cmd.Name))
	case reply.IsEmpty():
		lg.Error("command produced empty reply", "duration", duration)
		return d.send(ctx, lg, once, fallbackReply(cmd.Name))
	}

	lg.Info("command handled", "duration", duration, "ephemeral", reply.Ephemeral)
	return d.send(ctx, lg, once, reply)
}

func (d *Dispatcher) send(ctx context.Context, lg *slog.Logger, ic Interaction, reply Reply) error {
	if err := ic.Reply(ctx, reply); err != nil {
		lg.Error("send reply failed", "err", err)
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func fallbackReply(name string) Reply {
	return Text(fmt.Sprintf("Something went wrong while running /%s. Please try again later.", name))
}

func missingParams(cmd Command, inv Invocation) []string {
	var missing []string
	for _, p := range cmd.Params {
		if p.Required && inv.Option(p.Name) == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// runHandler превращает панику обработчика в ошибку.
func runHandler(ctx context.Context, h Handler, inv Invocation) (reply Reply, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return h(ctx, inv)
}

// onceInteraction пропускает только первый ответ.
type onceInteraction struct {
	mu      sync.Mutex
	next    Interaction
	replied bool
}

func (o *onceInteraction) Reply(ctx context.Context, reply Reply) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.replied {
		return ErrAlreadyReplied
	}
	o.replied = true
	return o.next.Reply(ctx, reply)
}
