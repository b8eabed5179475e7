package media

import (
	"context"
	"errors"
	"fmt"

	"nuggies/bot/router"
	"nuggies/service"
)

// DefaultFoxGIF is posted whenever the search comes back empty or fails
const DefaultFoxGIF = "https://media.tenor.com/YxT1w3VX5BAAAAAM/fox-dance.gif"

const (
	foxQuery = "fox"
	foxLimit = 50
)

var errNoResults = errors.New("media search returned no results")

// GifSearcher finds GIF URLs for a query
type GifSearcher interface {
	SearchGifs(ctx context.Context, query string, limit int) ([]string, error)
}

type Feature struct {
	gifs GifSearcher
	rng  service.Rand
}

// New creates the media feature. gifs may be nil, in which case fox always
// posts DefaultFoxGIF.
func New(gifs GifSearcher, rng service.Rand) *Feature {
	if rng == nil {
		rng = service.DefaultRand
	}
	return &Feature{gifs: gifs, rng: rng}
}

func (f *Feature) Routes() []router.Route {
	return []router.Route{
		{
			Name:        "fox",
			Description: "Get a random fox GIF",
			Effect:      router.EffectMediaSearch,
			Fallback:    DefaultFoxGIF,
			Handle:      f.handleFox,
		},
	}
}

func (f *Feature) handleFox(ctx context.Context, _ router.Invocation) (string, error) {
	if f.gifs == nil {
		return DefaultFoxGIF, nil
	}

	urls, err := f.gifs.SearchGifs(ctx, foxQuery, foxLimit)
	if err != nil {
		return "", fmt.Errorf("fox search: %w", err)
	}
	if len(urls) == 0 {
		return "", errNoResults
	}
	return urls[f.rng.IntN(len(urls))], nil
}
