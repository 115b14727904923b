package commands

import (
	"context"
	"fmt"
	"strings"

	"sharmoutabot/internal/apis"
	"sharmoutabot/internal/core"
)

// StocksAPI отдает рыночные данные Finnhub и Polygon.io.
type StocksAPI interface {
	Quote(ctx context.Context, symbol string) (apis.Quote, error)
	CompanyProfile(ctx context.Context, symbol string) (apis.CompanyProfile, error)
	SymbolSearch(ctx context.Context, query string) ([]apis.SymbolMatch, error)
	LatestDividend(ctx context.Context, symbol string) (apis.Dividend, error)
}

// Stocks объединяет биржевые команды.
type Stocks struct {
	api StocksAPI
}

// NewStocks создает модуль stocks.
func NewStocks(api StocksAPI) *Stocks {
	return &Stocks{api: api}
}

func (m *Stocks) Name() string { return "stocks" }

func (m *Stocks) Init(ctx context.Context) error { return nil }

func (m *Stocks) Commands() []core.Command {
	symbol := core.Param{Name: "symbol", Description: "Ticker symbol, e.g. AAPL", Type: core.ParamString, Required: true}
	return []core.Command{
		{
			Name:        "stock",
			Description: "Fetch the current stock price for a given symbol.",
			Params:      []core.Param{symbol},
			Handler:     m.stock,
		},
		{
			Name:        "stock_info",
			Description: "Fetch company information for a given stock symbol.",
			Params:      []core.Param{symbol},
			Handler:     m.stockInfo,
		},
		{
			Name:        "symbol_search",
			Description: "Search for stock symbols.",
			Params:      []core.Param{{Name: "query", Description: "Company name or ticker", Type: core.ParamString, Required: true}},
			Handler:     m.symbolSearch,
		},
		{
			Name:        "dividends",
			Description: "Fetch the latest dividend information for a stock symbol.",
			Params:      []core.Param{symbol},
			Handler:     m.dividends,
		},
	}
}

func displaySymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (m *Stocks) stock(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	symbol := displaySymbol(inv.Option("symbol"))
	q, err := m.api.Quote(ctx, symbol)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return quoteReply(symbol, q, err), nil
}

func quoteReply(symbol string, q apis.Quote, err error) core.Reply {
	if err != nil {
		return core.Text(fmt.Sprintf("Failed to get stock price for %s", symbol))
	}
	e := &core.Embed{
		Title:       "Stock price for " + symbol,
		Description: "Current price: " + q.Current,
		Color:       colorDodgerBlue,
		FooterText:  footerFinnhub,
	}
	e.AddField("Open", q.Open, false).
		AddField("High", q.High, false).
		AddField("Low", q.Low, false).
		AddField("Previous Close", q.PreviousClose, false)
	return embedReply(e)
}

func (m *Stocks) stockInfo(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	symbol := displaySymbol(inv.Option("symbol"))
	p, err := m.api.CompanyProfile(ctx, symbol)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return profileReply(symbol, p, err), nil
}

func profileReply(symbol string, p apis.CompanyProfile, err error) core.Reply {
	if err != nil {
		return core.Text(fmt.Sprintf("Failed to get stock information for %s", symbol))
	}
	e := &core.Embed{
		Title:        "Stock information for " + symbol,
		Description:  p.Name,
		Color:        colorDodgerBlue,
		ThumbnailURL: p.LogoURL,
		FooterText:   footerFinnhub,
	}
	e.AddField("Country", p.Country, false).
		AddField("Currency", p.Currency, false).
		AddField("Exchange", p.Exchange, false).
		AddField("Industry", p.Industry, false).
		AddField("Market Cap", p.MarketCap, false).
		AddField("IPO", p.IPO, false).
		AddField("Web URL", p.WebURL, false).
		AddField("Phone Number", p.Phone, false).
		AddField("Outstanding Shares", p.SharesOutstanding, false)
	return embedReply(e)
}

func (m *Stocks) symbolSearch(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	query := strings.TrimSpace(inv.Option("query"))
	matches, err := m.api.SymbolSearch(ctx, query)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return symbolSearchReply(query, matches, err), nil
}

func symbolSearchReply(query string, matches []apis.SymbolMatch, err error) core.Reply {
	if err != nil || len(matches) == 0 {
		return core.Private(fmt.Sprintf("No results found for '%s'", query))
	}
	e := &core.Embed{
		Title:       fmt.Sprintf("Stock symbols for '%s'", query),
		Description: "Here are the results:",
		Color:       colorDodgerBlue,
		FooterText:  footerFinnhub,
	}
	for _, mt := range matches {
		e.AddField(mt.Description, fmt.Sprintf("Symbol: %s\nType: %s", mt.Symbol, mt.Type), false)
	}
	return embedReply(e)
}

func (m *Stocks) dividends(ctx context.Context, inv core.Invocation) (core.Reply, error) {
	symbol := displaySymbol(inv.Option("symbol"))
	d, err := m.api.LatestDividend(ctx, symbol)
	if uerr := unexpected(err); uerr != nil {
		return core.Reply{}, uerr
	}
	return dividendReply(symbol, d, err), nil
}

func dividendReply(symbol string, d apis.Dividend, err error) core.Reply {
	if err != nil {
		return core.Private(fmt.Sprintf("No dividend information found for %s", symbol))
	}
	e := &core.Embed{
		Title:       "Dividends for " + symbol,
		Description: "Here are the details:",
		Color:       colorDodgerBlue,
		FooterText:  footerPolygon,
	}
	e.AddField("Amount", d.CashAmount, false).
		AddField("Ex-Dividend Date", d.ExDividendDate, false).
		AddField("Payment Date", d.PayDate, false).
		AddField("Record Date", d.RecordDate, false)
	return embedReply(e)
}
