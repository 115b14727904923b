package core

import (
	"context"
	"time"
)

// ParamType описывает тип параметра команды.
type ParamType int

const (
	ParamString ParamType = iota + 1
)

// Param описывает один параметр команды.
type Param struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
}

// Handler исполняет команду и возвращает ровно один ответ.
// Ошибка означает непредвиденный сбой; ErrNoReply подавляет ответ.
type Handler func(ctx context.Context, inv Invocation) (Reply, error)

// Command описывает команду, доступную пользователю.
type Command struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

// Module группирует команды одной предметной области.
type Module interface {
	Name() string
	Init(ctx context.Context) error
	Commands() []Command
}

// Invocation описывает один вызов команды.
type Invocation struct {
	ID       string
	Command  string
	Options  map[string]string
	UserID   string
	UserName string
	GuildID  string
	Source   string
	// Latency: задержка соединения транспорта с платформой, если известна.
	Latency time.Duration
}

// Option возвращает значение параметра или пустую строку.
func (inv Invocation) Option(name string) string {
	if inv.Options == nil {
		return ""
	}
	return inv.Options[name]
}

// Field описывает поле embed-ответа.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed представляет оформленный ответ независимо от платформы.
type Embed struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	URL          string  `json:"url,omitempty"`
	Color        int     `json:"color,omitempty"`
	Fields       []Field `json:"fields,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	FooterText   string  `json:"footer_text,omitempty"`
}

// AddField добавляет поле и возвращает embed для цепочки вызовов.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
	return e
}

// Reply описывает ответ на вызов: текст, embed или оба.
type Reply struct {
	Content   string `json:"content,omitempty"`
	Embed     *Embed `json:"embed,omitempty"`
	Ephemeral bool   `json:"ephemeral,omitempty"`
}

// Text создает видимый всем текстовый ответ.
func Text(content string) Reply {
	return Reply{Content: content}
}

// Private создает текстовый ответ, видимый только автору вызова.
func Private(content string) Reply {
	return Reply{Content: content, Ephemeral: true}
}

// EmbedReply создает ответ с embed.
func EmbedReply(e *Embed) Reply {
	return Reply{Embed: e}
}

// IsEmpty сообщает, что ответ не содержит ни текста, ни embed.
func (r Reply) IsEmpty() bool {
	return r.Content == "" && r.Embed == nil
}

// Interaction отвечает на конкретный вызов; ответ допускается один.
type Interaction interface {
	Reply(ctx context.Context, reply Reply) error
}
