package apis

import (
	"context"
	"fmt"
)

// NoFactsText возвращается вместо факта, если сервис ответил пустым списком.
const NoFactsText = "No facts found."

type factDTO struct {
	Fact string `json:"fact"`
}

// RandomFact запрашивает случайный факт у API Ninjas.
func (c *Client) RandomFact(ctx context.Context) (string, error) {
	if c.keys.Ninja == "" {
		return "", missingKey("API Ninjas", "API_NINJA_KEY")
	}
	resp, err := c.fetch(ctx, request{
		url:     c.endpoints.Facts + "/facts",
		headers: map[string]string{"X-Api-Key": c.keys.Ninja},
	})
	if err != nil {
		return "", err
	}
	if resp.status != 200 {
		return "", newError(KindUpstream, fmt.Sprintf("Error: %d - %s", resp.status, resp.text()), nil)
	}
	var facts []factDTO
	if err := decodeJSON("API Ninjas", resp.body, &facts); err != nil {
		return "", err
	}
	if len(facts) == 0 {
		return NoFactsText, nil
	}
	return facts[0].Fact, nil
}
