package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"sharmoutabot/internal/apis"
	"sharmoutabot/internal/core"
)

// WordOfTheDay содержит статический текст команды word_of_the_day.
const WordOfTheDay = `Sharmouta: Arabic slang meaning "slut"; "sharmout" is the masculine form.`

// EducationAPI описывает внешние сервисы модуля education.
type EducationAPI interface {
	RandomFact(ctx context.Context) (string, error)
	CelestialBody(ctx context.Context, name string) (apis.CelestialBody, error)
	Country(ctx context.Context, name string) (apis.Country, error)
	Verse(ctx context.Context, number int) (apis.Verse, error)
}

// Education объединяет справочные команды: факты, небесные тела, страны, аяты.
type Education struct {
	api EducationAPI
	// pick возвращает случайное число в [0, n).
	pick func(n int) int
}

// NewEducation создает модуль education.
func NewEducation(api EducationAPI) *Education {
	return &Education{api: api, pick: rand.IntN}
}

func (m *Education) Name() string { return "education" }

func (m *Education) Init(ctx context.Context) error { return nil }

func (m *Education) Commands() []core.Command {
	return []core.Command{
		{
			Name:        "fact",
			Description: "Get a random fact",
			Handler:     m.fact,
		},
		{
			Name:        "word_of_the_day",
			Description: "Get the word of the day",
			Handler: func(ctx context.Context, inv core.Invocation) (core.Reply, error) {
				return core.Text(WordOfTheDay), nil
			},
		},
		{
			Name:        "celestial",
			Description: "Fetch details about a celestial body.",
			Params:      []core.Param{{Name: "name", Description: "Name of the body, e.g. mars", Type: core.ParamString, Required: true}},
			Handler:     m.celestial,
		},
		{
			Name:        "country",
			Description: "Fetch details about a country.",
			Params:      []core.Param{{Name: "name", Description: "Country name", Type: core.ParamString, Required: true}},
			Handler:     m.country,
		},
		{
			Name:        "quran",
			Description: "Get a random quran verse",
			Handler:     m.quran,
		},
	}
}

func (m *Education) fact(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	fact, err := m.api.RandomFact(ctx)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return factReply(fact, err), nil
}

func factReply(fact string, err error) core.Reply {
	if err != nil {
		switch apis.KindOf(err) {
		case apis.KindUpstream, apis.KindConfig:
			return core.Text(err.Error())
		default:
			return core.Text("Failed to get a random fact")
		}
	}
	if fact == "" {
		return core.Text("Failed to get a random fact")
	}
	return core.Text(fact)
}

func (m *Education) celestial(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	body, err := m.api.CelestialBody(ctx, inv.Option("name"))
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return celestialReply(body, err), nil
}

func celestialReply(body apis.CelestialBody, err error) core.Reply {
	if err != nil {
		return core.Private("Error: " + err.Error())
	}
	e := &core.Embed{
		Title:       "Details about " + body.Name,
		Description: "Here is what I found:",
		Color:       colorDodgerBlue,
		FooterText:  footerSolarSystem,
	}
	e.AddField("Mass", body.Mass, false).
		AddField("Gravity", body.Gravity, false).
		AddField("Mean Radius", body.Radius, false).
		AddField("Orbital Period", body.Orbit, false).
		AddField("Moons", strings.Join(body.Moons, ", "), false)
	return embedReply(e)
}

func (m *Education) country(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	c, err := m.api.Country(ctx, inv.Option("name"))
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return countryReply(c, err), nil
}

func countryReply(c apis.Country, err error) core.Reply {
	if err != nil {
		return core.Private("Error: " + err.Error())
	}
	e := &core.Embed{
		Title:        "Details about " + c.CommonName,
		Description:  "Here is what I found:",
		Color:        colorDodgerBlue,
		ThumbnailURL: c.FlagURL,
		FooterText:   footerCountries,
	}
	e.AddField("Official Name", c.OfficialName, false).
		AddField("Capital", c.Capital, false).
		AddField("Population", groupThousands(c.Population), false).
		AddField("Area", areaText(c.Area), false).
		AddField("Currency", c.Currencies, false).
		AddField("Language", c.Languages, false)
	return embedReply(e)
}

// groupThousands разделяет разряды запятыми; нечисловые значения возвращаются как есть.
func groupThousands(v string) string {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return humanize.Comma(i)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return humanize.Commaf(f)
	}
	return v
}

func areaText(v string) string {
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return v
	}
	return groupThousands(v) + " km²"
}

func (m *Education) quran(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	n := m.pick(apis.VerseCount) + 1
	v, err := m.api.Verse(ctx, n)
	if err != nil {
		return core.Reply{}, fmt.Errorf("fetch verse %d: %w: %w", n, err, core.ErrNoReply)
	}
	return core.Text(fmt.Sprintf("%s\n\n%s - %s, %d", v.Arabic, v.English, v.Surah, v.NumberInSurah)), nil
}
