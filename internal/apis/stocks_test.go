package apis

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finnhub/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "fh-key", r.Header.Get("X-Finnhub-Token"))
		_, _ = w.Write([]byte(`{"c":261.74,"d":-1.2,"dp":-0.45,"h":263.31,"l":260.68,"o":261.07,"pc":262.94,"t":1700000000}`))
	}))
	q, err := c.Quote(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, Quote{Current: "261.74", Open: "261.07", High: "263.31", Low: "260.68", PreviousClose: "262.94"}, q)
}

func TestQuoteEmptyObject(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	_, err := c.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestQuoteUpstreamError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"You don't have access to this resource."}`))
	}))
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Contains(t, err.Error(), "403")
}

func TestCompanyProfile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/finnhub/stock/profile2", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"country":"US","currency":"USD","exchange":"NASDAQ NMS - GLOBAL MARKET",
			"finnhubIndustry":"Technology","ipo":"1980-12-12","logo":"https://static.finnhub.io/logo/aapl.png",
			"marketCapitalization":3898512.5,"name":"Apple Inc","phone":"14089961010",
			"shareOutstanding":14840.39,"ticker":"AAPL","weburl":"https://www.apple.com/"
		}`))
	}))
	p, err := c.CompanyProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, CompanyProfile{
		Name:              "Apple Inc",
		Country:           "US",
		Currency:          "USD",
		Exchange:          "NASDAQ NMS - GLOBAL MARKET",
		Industry:          "Technology",
		MarketCap:         "3898512.5",
		IPO:               "1980-12-12",
		WebURL:            "https://www.apple.com/",
		Phone:             "14089961010",
		SharesOutstanding: "14840.39",
		LogoURL:           "https://static.finnhub.io/logo/aapl.png",
	}, p)
}

func TestCompanyProfileEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	_, err := c.CompanyProfile(context.Background(), "ZZZZ")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSymbolSearch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"count":2,"result":[
			{"description":"APPLE INC","displaySymbol":"AAPL","symbol":"AAPL","type":"Common Stock"},
			{"description":"APPLE HOSPITALITY REIT INC","displaySymbol":"APLE","symbol":"APLE","type":"REIT"}
		]}`))
	}))
	res, err := c.SymbolSearch(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, []SymbolMatch{
		{Description: "APPLE INC", Symbol: "AAPL", Type: "Common Stock"},
		{Description: "APPLE HOSPITALITY REIT INC", Symbol: "APLE", Type: "REIT"},
	}, res)
}

func TestSymbolSearchEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"result":[]}`))
	}))
	_, err := c.SymbolSearch(context.Background(), "qwertyuiop")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestLatestDividend(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/polygon/v3/reference/dividends", r.URL.Path)
		assert.Equal(t, "MSFT", r.URL.Query().Get("ticker"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer pg-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"results":[{"cash_amount":0.83,"ex_dividend_date":"2025-02-20","pay_date":"2025-03-13","record_date":"2025-02-20","ticker":"MSFT"}],"status":"OK"}`))
	}))
	d, err := c.LatestDividend(context.Background(), "msft")
	require.NoError(t, err)
	assert.Equal(t, Dividend{CashAmount: "0.83", ExDividendDate: "2025-02-20", PayDate: "2025-03-13", RecordDate: "2025-02-20"}, d)
}

func TestLatestDividendEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[],"status":"OK"}`))
	}))
	_, err := c.LatestDividend(context.Background(), "BRK.A")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
