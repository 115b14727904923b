package commands

import (
	"context"
	"sync"
	"testing"

	"sharmoutabot/internal/apis"
	"sharmoutabot/internal/core"
	"sharmoutabot/internal/modules/host"
)

type fakeEducation struct {
	fact     string
	body     apis.CelestialBody
	country  apis.Country
	verse    apis.Verse
	err      error
	lastName string
	verseNum int
}

func (f *fakeEducation) RandomFact(ctx context.Context) (string, error) { return f.fact, f.err }

func (f *fakeEducation) CelestialBody(ctx context.Context, name string) (apis.CelestialBody, error) {
	f.lastName = name
	return f.body, f.err
}

func (f *fakeEducation) Country(ctx context.Context, name string) (apis.Country, error) {
	f.lastName = name
	return f.country, f.err
}

func (f *fakeEducation) Verse(ctx context.Context, number int) (apis.Verse, error) {
	f.verseNum = number
	return f.verse, f.err
}

type fakeStocks struct {
	quote      apis.Quote
	profile    apis.CompanyProfile
	matches    []apis.SymbolMatch
	dividend   apis.Dividend
	err        error
	lastSymbol string
}

func (f *fakeStocks) Quote(ctx context.Context, symbol string) (apis.Quote, error) {
	f.lastSymbol = symbol
	return f.quote, f.err
}

func (f *fakeStocks) CompanyProfile(ctx context.Context, symbol string) (apis.CompanyProfile, error) {
	f.lastSymbol = symbol
	return f.profile, f.err
}

func (f *fakeStocks) SymbolSearch(ctx context.Context, query string) ([]apis.SymbolMatch, error) {
	return f.matches, f.err
}

func (f *fakeStocks) LatestDividend(ctx context.Context, symbol string) (apis.Dividend, error) {
	f.lastSymbol = symbol
	return f.dividend, f.err
}

type fakeWiki struct {
	article    apis.WikiArticle
	randoms    []apis.WikiArticle
	links      []apis.WikiLink
	categories []string
	sections   []apis.WikiSection
	err        error
}

func (f *fakeWiki) Search(ctx context.Context, term string) (apis.WikiArticle, error) {
	return f.article, f.err
}

func (f *fakeWiki) RandomArticle(ctx context.Context) (apis.WikiArticle, error) {
	if len(f.randoms) == 0 {
		return apis.WikiArticle{}, f.err
	}
	a := f.randoms[0]
	f.randoms = f.randoms[1:]
	return a, f.err
}

func (f *fakeWiki) TrendingArticles(ctx context.Context) ([]apis.WikiLink, error) {
	return f.links, f.err
}

func (f *fakeWiki) ArticleCategories(ctx context.Context, title string) ([]string, error) {
	return f.categories, f.err
}

func (f *fakeWiki) ArticleSections(ctx context.Context, title string) ([]apis.WikiSection, error) {
	return f.sections, f.err
}

type fakeStats struct {
	stats host.Stats
	err   error
}

func (f fakeStats) Collect(ctx context.Context) (host.Stats, error) { return f.stats, f.err }

type recordingInteraction struct {
	mu      sync.Mutex
	replies []core.Reply
}

func (r *recordingInteraction) Reply(ctx context.Context, reply core.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply)
	return nil
}

func notFoundErr(reason string) error {
	return &apis.Error{Kind: apis.KindNotFound, Reason: reason}
}

func transportErr() error {
	return &apis.Error{Kind: apis.KindTransport, Reason: "dial tcp: connection refused"}
}

// run находит команду модуля по имени и вызывает ее обработчик.
func run(t *testing.T, m core.Module, name string, opts map[string]string) (core.Reply, error) {
	t.Helper()
	for _, c := range m.Commands() {
		if c.Name == name {
			return c.Handler(context.Background(), core.Invocation{Command: name, Options: opts, UserName: "tester"})
		}
	}
	t.Fatalf("command %s not found in module %s", name, m.Name())
	return core.Reply{}, nil
}
