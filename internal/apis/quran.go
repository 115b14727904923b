package apis

import (
	"context"
	"fmt"
)

// VerseCount равен числу аятов в Коране.
const VerseCount = 6236

// Verse содержит аят на арабском с английским переводом.
type Verse struct {
	Arabic        string
	English       string
	Surah         string
	NumberInSurah int
}

type verseDTO struct {
	Data []struct {
		Text  string `json:"text"`
		Surah struct {
			EnglishName string `json:"englishName"`
		} `json:"surah"`
		NumberInSurah int `json:"numberInSurah"`
	} `json:"data"`
}

// Verse запрашивает аят number (1..VerseCount) в изданиях quran-uthmani и en.pickthall.
func (c *Client) Verse(ctx context.Context, number int) (Verse, error) {
	if number < 1 || number > VerseCount {
		return Verse{}, newError(KindNotFound, fmt.Sprintf("verse %d is out of range", number), nil)
	}
	resp, err := c.fetch(ctx, request{
		url: fmt.Sprintf("%s/ayah/%d/editions/quran-uthmani,en.pickthall", c.endpoints.Quran, number),
	})
	if err != nil {
		return Verse{}, err
	}
	if !resp.ok() {
		return Verse{}, newError(KindUpstream, fmt.Sprintf("alquran.cloud returned %d: %s", resp.status, resp.text()), nil)
	}
	var dto verseDTO
	if err := decodeJSON("alquran.cloud", resp.body, &dto); err != nil {
		return Verse{}, err
	}
	if len(dto.Data) < 2 {
		return Verse{}, decodeError("alquran.cloud", fmt.Errorf("expected 2 editions, got %d", len(dto.Data)))
	}
	return Verse{
		Arabic:        dto.Data[0].Text,
		English:       dto.Data[1].Text,
		Surah:         dto.Data[0].Surah.EnglishName,
		NumberInSurah: dto.Data[0].NumberInSurah,
	}, nil
}
