package apis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Endpoints задает базовые адреса внешних сервисов.
type Endpoints struct {
	Facts       string
	SolarSystem string
	Countries   string
	Finnhub     string
	Polygon     string
	Wikipedia   string
	Quran       string
}

// DefaultEndpoints возвращает публичные адреса сервисов.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Facts:       "https://api.api-ninjas.com/v1",
		SolarSystem: "https://api.le-systeme-solaire.net/rest",
		Countries:   "https://restcountries.com/v3.1",
		Finnhub:     "https://finnhub.io/api/v1",
		Polygon:     "https://api.polygon.io",
		Wikipedia:   "https://en.wikipedia.org/w/api.php",
		Quran:       "https://api.alquran.cloud/v1",
	}
}

// Keys содержит ключи доступа к сервисам. Пустой ключ проверяется при вызове.
type Keys struct {
	Ninja       string
	Finnhub     string
	Polygon     string
	SolarSystem string
}

// Options задает параметры клиента.
type Options struct {
	Endpoints Endpoints
	Keys      Keys
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// Client выполняет запросы ко всем внешним API. Без повторов и кеша.
type Client struct {
	http      *resty.Client
	endpoints Endpoints
	keys      Keys
	logger    *slog.Logger
}

// New создает клиент; незаданные адреса берутся из DefaultEndpoints.
func New(opts Options) *Client {
	ep := fillEndpoints(opts.Endpoints, DefaultEndpoints())
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "sharmoutabot/dev"
	}
	lg := opts.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	hc := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "application/json")

	return &Client{
		http:      hc,
		endpoints: ep,
		keys:      opts.Keys,
		logger:    lg,
	}
}

func fillEndpoints(ep, def Endpoints) Endpoints {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return strings.TrimRight(v, "/")
	}
	return Endpoints{
		Facts:       pick(ep.Facts, def.Facts),
		SolarSystem: pick(ep.SolarSystem, def.SolarSystem),
		Countries:   pick(ep.Countries, def.Countries),
		Finnhub:     pick(ep.Finnhub, def.Finnhub),
		Polygon:     pick(ep.Polygon, def.Polygon),
		Wikipedia:   pick(ep.Wikipedia, def.Wikipedia),
		Quran:       pick(ep.Quran, def.Quran),
	}
}

type request struct {
	url     string
	query   map[string]string
	headers map[string]string
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r response) text() string {
	return strings.TrimSpace(string(r.body))
}

// fetch выполняет GET; ошибкой считается только сбой транспорта.
func (c *Client) fetch(ctx context.Context, req request) (response, error) {
	r := c.http.R().SetContext(ctx)
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}
	if len(req.headers) > 0 {
		r.SetHeaders(req.headers)
	}
	resp, err := r.Get(req.url)
	if err != nil {
		c.logger.Debug("upstream request failed", "url", req.url, "err", err)
		return response{}, newError(KindTransport, err.Error(), err)
	}
	c.logger.Debug("upstream request", "url", req.url, "status", resp.StatusCode())
	return response{status: resp.StatusCode(), body: resp.Body()}, nil
}

// decodeJSON разбирает тело в ожидаемую структуру; лишний мусор после JSON считается ошибкой формы.
func decodeJSON(service string, body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return decodeError(service, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return decodeError(service, fmt.Errorf("trailing data after JSON value"))
	}
	return nil
}

// isJSONArray проверяет, что сырое значение является массивом.
func isJSONArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

// numberOr возвращает литерал числа как есть или fallback, если поле отсутствует.
func numberOr(n *json.Number, fallback string) string {
	if n == nil || n.String() == "" {
		return fallback
	}
	return n.String()
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
