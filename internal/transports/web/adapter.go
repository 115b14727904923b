package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sharmoutabot/internal/core"
)

type contextKey string

const (
	ctxRequestID  contextKey = "request_id"
	ctxExecuteReq contextKey = "execute_req"
)

// Config определяет параметры HTTP-транспорта.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	MaxRequestBody  int64
}

// Adapter реализует web transport поверх net/http: локальный доступ к тем же командам, что и в Discord.
type Adapter struct {
	dispatcher *core.Dispatcher
	lifecycle  *core.Lifecycle
	cfg        Config
	logger     *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

type executeRequest struct {
	Command string            `json:"command"`
	Options map[string]string `json:"options"`
	UserID  string            `json:"user_id"`
}

// NewAdapter создает web transport.
func NewAdapter(dispatcher *core.Dispatcher, lifecycle *core.Lifecycle, cfg Config, logger *slog.Logger) *Adapter {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8080"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 2 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 20 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.MaxRequestBody <= 0 {
		cfg.MaxRequestBody = 1 << 16
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
		cfg:        cfg,
		logger:     logger.With("transport", "web"),
	}
}

func (a *Adapter) Name() string { return "web" }

// Start запускает HTTP server и останавливает его при отмене контекста.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.server != nil {
		a.mu.Unlock()
		return errors.New("web transport already started")
	}
	srv := &http.Server{
		Addr:         a.cfg.ListenAddr,
		Handler:      a.routes(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}
	a.server = srv
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		_ = a.Stop(stopCtx)
	}()

	go func() {
		a.logger.Info("web transport listening", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("web transport stopped", "err", err)
		}
	}()
	return nil
}

// Stop завершает HTTP server.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.server = nil
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func (a *Adapter) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /v1/health", http.HandlerFunc(a.handleHealth))
	mux.Handle("GET /v1/commands", http.HandlerFunc(a.handleCommands))
	mux.Handle("POST /v1/commands/execute", chain(http.HandlerFunc(a.handleExecute),
		a.timeoutMiddleware(),
		a.maxBodyMiddleware(),
		a.decodeExecuteMiddleware(),
	))

	return chain(mux, a.requestIDMiddleware(), a.accessLogMiddleware())
}

func (a *Adapter) requestIDMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := sanitizeRequestID(r.Header.Get("X-Request-ID"))
			if requestID == "" {
				requestID = newRequestID()
			}
			w.Header().Set("X-Request-ID", requestID)
			ctx := context.WithValue(r.Context(), ctxRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *Adapter) accessLogMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			a.logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"request_id", w.Header().Get("X-Request-ID"),
				"duration", time.Since(start),
			)
		})
	}
}

func (a *Adapter) timeoutMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), a.cfg.RequestTimeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Adapter) maxBodyMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxRequestBody)
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Adapter) decodeExecuteMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, code, statusCode := decodeExecuteRequest(r)
			if code != "" {
				writeError(w, r, statusCode, code)
				return
			}
			ctx := context.WithValue(r.Context(), ctxExecuteReq, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func decodeExecuteRequest(r *http.Request) (executeRequest, string, int) {
	var req executeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return executeRequest{}, "payload_too_large", http.StatusRequestEntityTooLarge
		}
		return executeRequest{}, "invalid_json", http.StatusBadRequest
	}
	if dec.More() {
		return executeRequest{}, "invalid_json", http.StatusBadRequest
	}
	req.Command = strings.TrimPrefix(strings.TrimSpace(req.Command), "/")
	if req.Command == "" {
		return executeRequest{}, "bad_command", http.StatusBadRequest
	}
	return req, "", 0
}

func sanitizeRequestID(v string) string {
	id := strings.TrimSpace(v)
	if id == "" || len(id) > 64 {
		return ""
	}
	for _, ch := range id {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			continue
		}
		switch ch {
		case '-', '_', '.', ':':
			continue
		default:
			return ""
		}
	}
	return id
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":    "ok",
		"lifecycle": a.lifecycle.State().String(),
	})
}

type paramDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type commandDTO struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Params      []paramDTO `json:"params"`
}

func (a *Adapter) handleCommands(w http.ResponseWriter, r *http.Request) {
	cmds := a.dispatcher.Registry().Commands()
	items := make([]commandDTO, 0, len(cmds))
	for _, c := range cmds {
		dto := commandDTO{Name: c.Name, Description: c.Description, Params: []paramDTO{}}
		for _, p := range c.Params {
			dto.Params = append(dto.Params, paramDTO{Name: p.Name, Description: p.Description, Required: p.Required})
		}
		items = append(items, dto)
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"request_id": requestIDFromContext(r.Context()),
		"items":      items,
	})
}

// captureInteraction запоминает единственный ответ диспетчера.
type captureInteraction struct {
	mu    sync.Mutex
	reply *core.Reply
}

func (c *captureInteraction) Reply(ctx context.Context, reply core.Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reply = &reply
	return nil
}

func (c *captureInteraction) get() *core.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reply
}

func (a *Adapter) handleExecute(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromContext(r.Context())
	req, ok := r.Context().Value(ctxExecuteReq).(executeRequest)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "bad_command")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = "web"
	}
	inv := core.Invocation{
		ID:       requestID,
		Command:  req.Command,
		Options:  req.Options,
		UserID:   userID,
		UserName: userID,
		Source:   "web",
	}
	capture := &captureInteraction{}
	if err := a.dispatcher.Dispatch(r.Context(), inv, capture); err != nil {
		writeError(w, r, http.StatusInternalServerError, "reply_failed")
		return
	}
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		writeError(w, r, http.StatusGatewayTimeout, "request_timeout")
		return
	}

	reply := capture.get()
	if reply == nil {
		writeJSON(w, r, http.StatusOK, map[string]interface{}{
			"request_id": requestID,
			"status":     "no_reply",
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"request_id": requestID,
		"status":     "ok",
		"reply":      reply,
	})
}

func requestIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxRequestID).(string)
	if !ok || v == "" {
		return newRequestID()
	}
	return v
}

func newRequestID() string {
	return uuid.NewString()
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code string) {
	writeJSON(w, r, statusCode, map[string]string{
		"request_id": requestIDFromContext(r.Context()),
		"error_code": code,
		"message":    errorMessage(code),
	})
}

func errorMessage(code string) string {
	switch code {
	case "payload_too_large":
		return "request payload is too large"
	case "request_timeout":
		return "request timeout"
	case "invalid_json":
		return "request body is not valid JSON"
	case "bad_command":
		return "command is required"
	case "reply_failed":
		return "failed to deliver reply"
	default:
		return code
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestIDFromContext(r.Context()))
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
