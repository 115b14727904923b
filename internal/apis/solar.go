package apis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// CelestialBody содержит данные о теле Солнечной системы, готовые к показу.
type CelestialBody struct {
	Name    string
	Mass    string
	Gravity string
	Radius  string
	Moons   []string
	Orbit   string
}

type bodyDTO struct {
	Name        *string `json:"name"`
	EnglishName string  `json:"englishName"`
	Mass        *struct {
		MassValue    *json.Number `json:"massValue"`
		MassExponent *json.Number `json:"massExponent"`
	} `json:"mass"`
	Gravity      *json.Number `json:"gravity"`
	MeanRadius   *json.Number `json:"meanRadius"`
	SideralOrbit *json.Number `json:"sideralOrbit"`
	Moons        []*struct {
		Moon string `json:"moon"`
	} `json:"moons"`
}

// CelestialBody ищет тело по имени в Solar System OpenData.
func (c *Client) CelestialBody(ctx context.Context, name string) (CelestialBody, error) {
	req := request{url: c.endpoints.SolarSystem + "/bodies/" + url.PathEscape(strings.ToLower(strings.TrimSpace(name)))}
	if c.keys.SolarSystem != "" {
		req.headers = map[string]string{"Authorization": "Bearer " + c.keys.SolarSystem}
	}
	resp, err := c.fetch(ctx, req)
	if err != nil {
		return CelestialBody{}, err
	}
	if resp.status != 200 {
		return CelestialBody{}, newError(KindUpstream, fmt.Sprintf("API returned %d: %s", resp.status, resp.text()), nil)
	}
	var dto bodyDTO
	if err := decodeJSON("Solar System OpenData", resp.body, &dto); err != nil {
		return CelestialBody{}, err
	}
	if dto.Name == nil {
		return CelestialBody{}, notFound("No details found for this celestial body.")
	}
	return dto.toBody(), nil
}

func (d bodyDTO) toBody() CelestialBody {
	massValue, massExp := "N/A", ""
	if d.Mass != nil {
		massValue = numberOr(d.Mass.MassValue, "N/A")
		massExp = numberOr(d.Mass.MassExponent, "")
	}

	moons := make([]string, 0, len(d.Moons))
	for _, m := range d.Moons {
		if m == nil || m.Moon == "" {
			continue
		}
		moons = append(moons, m.Moon)
	}
	if len(moons) == 0 {
		moons = []string{"None"}
	}

	return CelestialBody{
		Name:    stringOr(d.EnglishName, "Unknown"),
		Mass:    fmt.Sprintf("%s × 10^%s kg", massValue, massExp),
		Gravity: numberOr(d.Gravity, "N/A") + " m/s²",
		Radius:  numberOr(d.MeanRadius, "N/A") + " km",
		Moons:   moons,
		Orbit:   numberOr(d.SideralOrbit, "N/A") + " Earth days",
	}
}
