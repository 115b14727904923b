package commands

import (
	"context"
	"fmt"
	"strings"

	"sharmoutabot/internal/apis"
	"sharmoutabot/internal/core"
)

// WikiAPI выполняет запросы к MediaWiki.
type WikiAPI interface {
	Search(ctx context.Context, term string) (apis.WikiArticle, error)
	RandomArticle(ctx context.Context) (apis.WikiArticle, error)
	TrendingArticles(ctx context.Context) ([]apis.WikiLink, error)
	ArticleCategories(ctx context.Context, title string) ([]string, error)
	ArticleSections(ctx context.Context, title string) ([]apis.WikiSection, error)
}

// Wiki объединяет команды Wikipedia.
type Wiki struct {
	api WikiAPI
}

// NewWiki создает модуль wiki.
func NewWiki(api WikiAPI) *Wiki {
	return &Wiki{api: api}
}

func (m *Wiki) Name() string { return "wiki" }

func (m *Wiki) Init(ctx context.Context) error { return nil }

func (m *Wiki) Commands() []core.Command {
	title := core.Param{Name: "title", Description: "Exact article title", Type: core.ParamString, Required: true}
	return []core.Command{
		{
			Name:        "wiki",
			Description: "Search Wikipedia for a topic.",
			Params:      []core.Param{{Name: "topic", Description: "What to look up", Type: core.ParamString, Required: true}},
			Handler:     m.search,
		},
		{
			Name:        "random_wiki",
			Description: "Get a random Wikipedia article.",
			Handler:     m.random,
		},
		{
			Name:        "trending_wiki",
			Description: "Get the most viewed Wikipedia articles.",
			Handler:     m.trending,
		},
		{
			Name:        "wiki_categories",
			Description: "List the categories of a Wikipedia article.",
			Params:      []core.Param{title},
			Handler:     m.categories,
		},
		{
			Name:        "wiki_sections",
			Description: "List the sections of a Wikipedia article.",
			Params:      []core.Param{title},
			Handler:     m.sections,
		},
	}
}

func (m *Wiki) search(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	topic := strings.TrimSpace(inv.Option("topic"))
	a, err := m.api.Search(ctx, topic)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return searchReply(topic, a, err), nil
}

func searchReply(topic string, a apis.WikiArticle, err error) core.Reply {
	if err != nil {
		return core.Text(fmt.Sprintf("No results found for '%s'", topic))
	}
	return embedReply(&core.Embed{
		Title:        a.Title,
		URL:          a.URL,
		Description:  a.Snippet,
		Color:        colorBlue,
		ThumbnailURL: a.ImageURL,
		FooterText:   footerWikipedia,
	})
}

func (m *Wiki) random(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	a, err := m.api.RandomArticle(ctx)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return randomReply(a, err), nil
}

func randomReply(a apis.WikiArticle, err error) core.Reply {
	if err != nil {
		return core.Text("Failed to get a random article")
	}
	return embedReply(&core.Embed{
		Title:        a.Title,
		URL:          a.URL,
		Color:        colorBlue,
		ThumbnailURL: a.ImageURL,
		FooterText:   footerWikipedia,
	})
}

func (m *Wiki) trending(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	links, err := m.api.TrendingArticles(ctx)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return trendingReply(links, err), nil
}

func trendingReply(links []apis.WikiLink, err error) core.Reply {
	if err != nil {
		return core.Text("Failed to fetch trending articles. Please try again later.")
	}
	e := &core.Embed{
		Title:       "Trending Wikipedia Articles",
		Description: "Here are the top trending articles on Wikipedia:",
		Color:       colorPurple,
	}
	for _, l := range links {
		e.AddField(l.Title, l.URL, false)
	}
	return embedReply(e)
}

func (m *Wiki) categories(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	title := strings.TrimSpace(inv.Option("title"))
	cats, err := m.api.ArticleCategories(ctx, title)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return categoriesReply(title, cats, err), nil
}

func categoriesReply(title string, cats []string, err error) core.Reply {
	if err != nil || len(cats) == 0 {
		return core.Text(fmt.Sprintf("No categories found for the article '%s'.", title))
	}
	return embedReply(&core.Embed{
		Title:       fmt.Sprintf("Categories for '%s'", title),
		Description: strings.Join(cats, "\n"),
		Color:       colorOrange,
		FooterText:  footerWikipedia,
	})
}

func (m *Wiki) sections(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	title := strings.TrimSpace(inv.Option("title"))
	secs, err := m.api.ArticleSections(ctx, title)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return sectionsReply(title, secs, err), nil
}

func sectionsReply(title string, secs []apis.WikiSection, err error) core.Reply {
	if err != nil || len(secs) == 0 {
		return core.Text(fmt.Sprintf("No sections found for the article '%s'.", title))
	}
	lines := make([]string, 0, len(secs))
	for _, s := range secs {
		lines = append(lines, fmt.Sprintf("%s: %s", s.Level, s.Title))
	}
	return embedReply(&core.Embed{
		Title:       fmt.Sprintf("Sections for '%s'", title),
		Description: strings.Join(lines, "\n"),
		Color:       colorTeal,
		FooterText:  footerWikipedia,
	})
}
