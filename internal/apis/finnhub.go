package apis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Quote содержит текущую котировку бумаги.
type Quote struct {
	Current       string
	Open          string
	High          string
	Low           string
	PreviousClose string
}

// CompanyProfile описывает эмитента.
type CompanyProfile struct {
	Name              string
	Country           string
	Currency          string
	Exchange          string
	Industry          string
	MarketCap         string
	IPO               string
	WebURL            string
	Phone             string
	SharesOutstanding string
	LogoURL           string
}

// SymbolMatch описывает одну строку результата поиска тикеров.
type SymbolMatch struct {
	Description string
	Symbol      string
	Type        string
}

type quoteDTO struct {
	C  *json.Number `json:"c"`
	O  *json.Number `json:"o"`
	H  *json.Number `json:"h"`
	L  *json.Number `json:"l"`
	PC *json.Number `json:"pc"`
}

type profileDTO struct {
	Name                 string       `json:"name"`
	Country              string       `json:"country"`
	Currency             string       `json:"currency"`
	Exchange             string       `json:"exchange"`
	FinnhubIndustry      string       `json:"finnhubIndustry"`
	MarketCapitalization *json.Number `json:"marketCapitalization"`
	IPO                  string       `json:"ipo"`
	WebURL               string       `json:"weburl"`
	Phone                string       `json:"phone"`
	ShareOutstanding     *json.Number `json:"shareOutstanding"`
	Logo                 string       `json:"logo"`
}

type searchDTO struct {
	Result []struct {
		Description string `json:"description"`
		Symbol      string `json:"symbol"`
		Type        string `json:"type"`
	} `json:"result"`
}

// Quote запрашивает котировку у Finnhub.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	var dto quoteDTO
	if err := c.finnhubObject(ctx, "/quote", map[string]string{"symbol": normalizeSymbol(symbol)}, &dto); err != nil {
		return Quote{}, err
	}
	return Quote{
		Current:       numberOr(dto.C, "N/A"),
		Open:          numberOr(dto.O, "N/A"),
		High:          numberOr(dto.H, "N/A"),
		Low:           numberOr(dto.L, "N/A"),
		PreviousClose: numberOr(dto.PC, "N/A"),
	}, nil
}

// CompanyProfile запрашивает профиль компании у Finnhub.
func (c *Client) CompanyProfile(ctx context.Context, symbol string) (CompanyProfile, error) {
	var dto profileDTO
	if err := c.finnhubObject(ctx, "/stock/profile2", map[string]string{"symbol": normalizeSymbol(symbol)}, &dto); err != nil {
		return CompanyProfile{}, err
	}
	return CompanyProfile{
		Name:              stringOr(dto.Name, "Unknown"),
		Country:           stringOr(dto.Country, "N/A"),
		Currency:          stringOr(dto.Currency, "N/A"),
		Exchange:          stringOr(dto.Exchange, "N/A"),
		Industry:          stringOr(dto.FinnhubIndustry, "N/A"),
		MarketCap:         numberOr(dto.MarketCapitalization, "N/A"),
		IPO:               stringOr(dto.IPO, "N/A"),
		WebURL:            stringOr(dto.WebURL, "N/A"),
		Phone:             stringOr(dto.Phone, "N/A"),
		SharesOutstanding: numberOr(dto.ShareOutstanding, "N/A"),
		LogoURL:           dto.Logo,
	}, nil
}

// SymbolSearch ищет тикеры по строке запроса.
func (c *Client) SymbolSearch(ctx context.Context, query string) ([]SymbolMatch, error) {
	resp, err := c.finnhubGet(ctx, "/search", map[string]string{"q": strings.TrimSpace(query)})
	if err != nil {
		return nil, err
	}
	var dto searchDTO
	if err := decodeJSON("Finnhub", resp.body, &dto); err != nil {
		return nil, err
	}
	if len(dto.Result) == 0 {
		return nil, notFound(fmt.Sprintf("No results found for '%s'", query))
	}
	out := make([]SymbolMatch, 0, len(dto.Result))
	for _, r := range dto.Result {
		out = append(out, SymbolMatch{
			Description: stringOr(r.Description, r.Symbol),
			Symbol:      r.Symbol,
			Type:        stringOr(r.Type, "N/A"),
		})
	}
	return out, nil
}

func (c *Client) finnhubGet(ctx context.Context, path string, query map[string]string) (response, error) {
	if c.keys.Finnhub == "" {
		return response{}, missingKey("Finnhub", "FINHUB_KEY")
	}
	resp, err := c.fetch(ctx, request{
		url:     c.endpoints.Finnhub + path,
		query:   query,
		headers: map[string]string{"X-Finnhub-Token": c.keys.Finnhub},
	})
	if err != nil {
		return response{}, err
	}
	if !resp.ok() {
		return response{}, newError(KindUpstream, fmt.Sprintf("Finnhub returned %d: %s", resp.status, resp.text()), nil)
	}
	return resp, nil
}

// finnhubObject разбирает ответ-объект; пустой объект означает, что данных нет.
func (c *Client) finnhubObject(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.finnhubGet(ctx, path, query)
	if err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := decodeJSON("Finnhub", resp.body, &raw); err != nil {
		return err
	}
	if msg, ok := raw["error"]; ok {
		var text string
		_ = json.Unmarshal(msg, &text)
		return newError(KindUpstream, fmt.Sprintf("Finnhub error: %s", stringOr(text, string(msg))), nil)
	}
	if len(raw) == 0 {
		return notFound(fmt.Sprintf("no data for %s", query["symbol"]))
	}
	return decodeJSON("Finnhub", resp.body, out)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
