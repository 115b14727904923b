package commands

import (
	"strings"
	"unicode/utf8"

	"sharmoutabot/internal/apis"
	"sharmoutabot/internal/core"
)

// Ограничения Discord для embed.
const (
	maxTitle       = 256
	maxDescription = 4096
	maxFields      = 25
	maxFieldName   = 256
	maxFieldValue  = 1024
	maxFooter      = 2048
)

const (
	colorDodgerBlue = 0x1E90FF
	colorBlue       = 0x3498DB
	colorPurple     = 0x9B59B6
	colorOrange     = 0xE67E22
	colorTeal       = 0x1ABC9C
)

const (
	footerSolarSystem = "Data provided by Solar System OpenData API"
	footerCountries   = "Data provided by Rest Countries API"
	footerFinnhub     = "Data provided by Finnhub"
	footerPolygon     = "Data provided by Polygon.io"
	footerWikipedia   = "Powered by Wikipedia"
)

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// embedReply приводит embed к ограничениям платформы и упаковывает его в ответ.
func embedReply(e *core.Embed) core.Reply {
	e.Title = truncate(e.Title, maxTitle)
	e.Description = truncate(e.Description, maxDescription)
	e.FooterText = truncate(e.FooterText, maxFooter)
	if len(e.Fields) > maxFields {
		e.Fields = e.Fields[:maxFields]
	}
	for i := range e.Fields {
		e.Fields[i].Name = truncate(orNA(e.Fields[i].Name), maxFieldName)
		e.Fields[i].Value = truncate(orNA(e.Fields[i].Value), maxFieldValue)
	}
	return core.EmbedReply(e)
}

// unexpected пропускает наружу только ошибки, не приведенные адаптером к отказу.
func unexpected(err error) error {
	if err != nil && apis.KindOf(err) == "" {
		return err
	}
	return nil
}
