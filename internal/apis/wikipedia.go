package apis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WikiArticleBaseURL задает префикс канонических ссылок на статьи.
const WikiArticleBaseURL = "https://en.wikipedia.org/wiki/"

// WikiArticle описывает найденную статью.
type WikiArticle struct {
	Title    string
	Snippet  string
	URL      string
	ImageURL string
}

// WikiLink связывает заголовок статьи со ссылкой.
type WikiLink struct {
	Title string
	URL   string
}

// WikiSection описывает элемент оглавления статьи.
type WikiSection struct {
	Title string
	Level string
}

type wikiPage struct {
	PageID     int64  `json:"pageid"`
	Title      string `json:"title"`
	FullURL    string `json:"fullurl"`
	Thumbnail  *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	Categories []struct {
		Title string `json:"title"`
	} `json:"categories"`
}

type wikiEnvelope struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Query *struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
		Pages      map[string]wikiPage `json:"pages"`
		MostViewed json.RawMessage     `json:"mostviewed"`
	} `json:"query"`
	Parse *struct {
		Sections []struct {
			Line  string `json:"line"`
			Level string `json:"level"`
		} `json:"sections"`
	} `json:"parse"`
}

// ArticleURL строит каноническую ссылку по заголовку: пробелы заменяются на "_".
func ArticleURL(title string) string {
	return WikiArticleBaseURL + strings.ReplaceAll(title, " ", "_")
}

// StripSearchMatch удаляет разметку подсветки совпадений из сниппета поиска.
func StripSearchMatch(snippet string) string {
	s := strings.ReplaceAll(snippet, `<span class="searchmatch">`, "")
	return strings.ReplaceAll(s, "</span>", "")
}

func (c *Client) wikiQuery(ctx context.Context, params map[string]string) (wikiEnvelope, error) {
	query := map[string]string{"format": "json"}
	for k, v := range params {
		query[k] = v
	}
	resp, err := c.fetch(ctx, request{url: c.endpoints.Wikipedia, query: query})
	if err != nil {
		return wikiEnvelope{}, err
	}
	if !resp.ok() {
		return wikiEnvelope{}, newError(KindUpstream, fmt.Sprintf("Wikipedia returned %d: %s", resp.status, resp.text()), nil)
	}
	var env wikiEnvelope
	if err := decodeJSON("Wikipedia", resp.body, &env); err != nil {
		return wikiEnvelope{}, err
	}
	return env, nil
}

// pagesInOrder возвращает страницы по возрастанию pageid; отсутствующие (с отрицательным ключом) идут первыми.
func pagesInOrder(pages map[string]wikiPage) []wikiPage {
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseInt(keys[i], 10, 64)
		b, errB := strconv.ParseInt(keys[j], 10, 64)
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	out := make([]wikiPage, 0, len(keys))
	for _, k := range keys {
		out = append(out, pages[k])
	}
	return out
}

// Search возвращает первую статью по запросу и, если есть, её миниатюру.
func (c *Client) Search(ctx context.Context, term string) (WikiArticle, error) {
	env, err := c.wikiQuery(ctx, map[string]string{
		"action":   "query",
		"list":     "search",
		"srsearch": term,
		"utf8":     "1",
	})
	if err != nil {
		return WikiArticle{}, err
	}
	if env.Query == nil || len(env.Query.Search) == 0 {
		return WikiArticle{}, notFound(fmt.Sprintf("No results found for '%s'", term))
	}
	hit := env.Query.Search[0]
	article := WikiArticle{
		Title:   hit.Title,
		Snippet: StripSearchMatch(hit.Snippet),
		URL:     ArticleURL(hit.Title),
	}

	image, err := c.pageThumbnail(ctx, hit.Title)
	if err != nil {
		c.logger.Warn("wikipedia thumbnail lookup failed", "title", hit.Title, "err", err)
	}
	article.ImageURL = image
	return article, nil
}

func (c *Client) pageThumbnail(ctx context.Context, title string) (string, error) {
	env, err := c.wikiQuery(ctx, map[string]string{
		"action":      "query",
		"prop":        "pageimages",
		"titles":      title,
		"pithumbsize": "300",
	})
	if err != nil {
		return "", err
	}
	if env.Query == nil {
		return "", nil
	}
	pages := pagesInOrder(env.Query.Pages)
	if len(pages) == 0 || pages[0].Thumbnail == nil {
		return "", nil
	}
	return pages[0].Thumbnail.Source, nil
}

// RandomArticle возвращает случайную статью из основного пространства имен.
func (c *Client) RandomArticle(ctx context.Context) (WikiArticle, error) {
	env, err := c.wikiQuery(ctx, map[string]string{
		"action":       "query",
		"generator":    "random",
		"grnnamespace": "0",
		"prop":         "pageimages|info",
		"inprop":       "url",
		"pithumbsize":  "500",
	})
	if err != nil {
		return WikiArticle{}, err
	}
	if env.Query == nil || len(env.Query.Pages) == 0 {
		return WikiArticle{}, notFound("Wikipedia returned no random page")
	}
	p := pagesInOrder(env.Query.Pages)[0]
	if p.Title == "" || p.FullURL == "" {
		return WikiArticle{}, decodeError("Wikipedia", fmt.Errorf("random page without title or url"))
	}
	article := WikiArticle{Title: p.Title, URL: p.FullURL}
	if p.Thumbnail != nil {
		article.ImageURL = p.Thumbnail.Source
	}
	return article, nil
}

// TrendingArticles возвращает до 10 самых просматриваемых статей.
func (c *Client) TrendingArticles(ctx context.Context) ([]WikiLink, error) {
	env, err := c.wikiQuery(ctx, map[string]string{
		"action":    "query",
		"list":      "mostviewed",
		"pvimlimit": "10",
	})
	if err != nil {
		return nil, err
	}
	if env.Query == nil || len(env.Query.MostViewed) == 0 {
		return []WikiLink{}, nil
	}
	if !isJSONArray(env.Query.MostViewed) {
		c.logger.Warn("unexpected mostviewed shape", "payload", string(env.Query.MostViewed))
		return nil, decodeError("Wikipedia", fmt.Errorf("mostviewed is not a list"))
	}
	var items []struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(env.Query.MostViewed, &items); err != nil {
		return nil, decodeError("Wikipedia", err)
	}
	out := make([]WikiLink, 0, len(items))
	for _, it := range items {
		title := stringOr(it.Title, "No Title")
		out = append(out, WikiLink{Title: title, URL: ArticleURL(title)})
	}
	return out, nil
}

// ArticleCategories возвращает категории статьи; пустой список не считается ошибкой.
func (c *Client) ArticleCategories(ctx context.Context, title string) ([]string, error) {
	env, err := c.wikiQuery(ctx, map[string]string{
		"action":  "query",
		"titles":  title,
		"prop":    "categories",
		"cllimit": "max",
	})
	if err != nil {
		return nil, err
	}
	categories := []string{}
	if env.Query == nil {
		return categories, nil
	}
	for _, p := range pagesInOrder(env.Query.Pages) {
		for _, cat := range p.Categories {
			categories = append(categories, cat.Title)
		}
	}
	return categories, nil
}

// ArticleSections возвращает оглавление статьи.
func (c *Client) ArticleSections(ctx context.Context, title string) ([]WikiSection, error) {
	env, err := c.wikiQuery(ctx, map[string]string{
		"action": "parse",
		"page":   title,
		"prop":   "sections",
	})
	if err != nil {
		return nil, err
	}
	if env.Error != nil {
		return nil, notFound(fmt.Sprintf("Wikipedia: %s", stringOr(env.Error.Info, env.Error.Code)))
	}
	sections := []WikiSection{}
	if env.Parse == nil {
		return sections, nil
	}
	for _, s := range env.Parse.Sections {
		sections = append(sections, WikiSection{Title: s.Line, Level: s.Level})
	}
	return sections, nil
}
