package apis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// PlaceholderFlagURL используется, если у страны нет флага.
const PlaceholderFlagURL = "https://via.placeholder.com/150?text=No+Image"

// Country содержит сведения о стране, готовые к показу.
// Population и Area содержат числовой литерал сервиса или "Unknown".
type Country struct {
	CommonName   string
	OfficialName string
	Capital      string
	Population   string
	Area         string
	Currencies   string
	Languages    string
	FlagURL      string
}

type countryDTO struct {
	Name *struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital    []string          `json:"capital"`
	Population *json.Number      `json:"population"`
	Area       *json.Number      `json:"area"`
	Languages  map[string]string `json:"languages"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Flags *struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

// Country ищет страну по названию в REST Countries.
func (c *Client) Country(ctx context.Context, name string) (Country, error) {
	resp, err := c.fetch(ctx, request{url: c.endpoints.Countries + "/name/" + url.PathEscape(strings.TrimSpace(name))})
	if err != nil {
		return Country{}, err
	}
	if resp.status != 200 {
		return Country{}, newError(KindUpstream, fmt.Sprintf("API returned %d: %s", resp.status, resp.text()), nil)
	}
	var list []countryDTO
	if err := decodeJSON("REST Countries", resp.body, &list); err != nil {
		return Country{}, err
	}
	if len(list) == 0 {
		return Country{}, notFound("No details found for this country.")
	}
	return list[0].toCountry(), nil
}

func (d countryDTO) toCountry() Country {
	out := Country{
		CommonName:   "Unknown",
		OfficialName: "Unknown",
		Capital:      "Unknown",
		Population:   numberOr(d.Population, "Unknown"),
		Area:         numberOr(d.Area, "Unknown"),
		Currencies:   "Unknown",
		Languages:    "Unknown",
		FlagURL:      PlaceholderFlagURL,
	}
	if d.Name != nil {
		out.CommonName = stringOr(d.Name.Common, "Unknown")
		out.OfficialName = stringOr(d.Name.Official, "Unknown")
	}
	if len(d.Capital) > 0 {
		out.Capital = strings.Join(d.Capital, ", ")
	}

	// Коды сортируются: порядок ключей JSON-объекта не сохраняется.
	if len(d.Currencies) > 0 {
		codes := sortedKeys(d.Currencies)
		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			cur := d.Currencies[code]
			parts = append(parts, fmt.Sprintf("%s (%s)", stringOr(cur.Name, "Unknown"), cur.Symbol))
		}
		out.Currencies = strings.Join(parts, ", ")
	}
	if len(d.Languages) > 0 {
		codes := sortedKeys(d.Languages)
		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, d.Languages[code])
		}
		out.Languages = strings.Join(parts, ", ")
	}
	if d.Flags != nil && d.Flags.PNG != "" {
		out.FlagURL = d.Flags.PNG
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
