package apis

import (
	"context"
	"encoding/json"
	"fmt"
)

// Dividend описывает последнюю объявленную выплату дивидендов.
type Dividend struct {
	CashAmount     string
	ExDividendDate string
	PayDate        string
	RecordDate     string
}

type dividendsDTO struct {
	Results []struct {
		CashAmount     *json.Number `json:"cash_amount"`
		ExDividendDate string       `json:"ex_dividend_date"`
		PayDate        string       `json:"pay_date"`
		RecordDate     string       `json:"record_date"`
	} `json:"results"`
}

// LatestDividend возвращает самую свежую запись о дивидендах из Polygon.io.
func (c *Client) LatestDividend(ctx context.Context, symbol string) (Dividend, error) {
	if c.keys.Polygon == "" {
		return Dividend{}, missingKey("Polygon.io", "POLYGON_KEY")
	}
	ticker := normalizeSymbol(symbol)
	resp, err := c.fetch(ctx, request{
		url: c.endpoints.Polygon + "/v3/reference/dividends",
		query: map[string]string{
			"ticker": ticker,
			"limit":  "1",
		},
		headers: map[string]string{"Authorization": "Bearer " + c.keys.Polygon},
	})
	if err != nil {
		return Dividend{}, err
	}
	if !resp.ok() {
		return Dividend{}, newError(KindUpstream, fmt.Sprintf("Polygon.io returned %d: %s", resp.status, resp.text()), nil)
	}
	var dto dividendsDTO
	if err := decodeJSON("Polygon.io", resp.body, &dto); err != nil {
		return Dividend{}, err
	}
	if len(dto.Results) == 0 {
		return Dividend{}, notFound(fmt.Sprintf("No dividend information found for %s", ticker))
	}
	r := dto.Results[0]
	return Dividend{
		CashAmount:     numberOr(r.CashAmount, "N/A"),
		ExDividendDate: stringOr(r.ExDividendDate, "N/A"),
		PayDate:        stringOr(r.PayDate, "N/A"),
		RecordDate:     stringOr(r.RecordDate, "N/A"),
	}, nil
}
