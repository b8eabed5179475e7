package media

import (
	"context"
	"errors"
	"testing"

	"nuggies/bot/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchGifs(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func foxRoute(t *testing.T, f *Feature) router.Route {
	t.Helper()
	routes := f.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "fox", routes[0].Name)
	assert.Equal(t, DefaultFoxGIF, routes[0].Fallback)
	return routes[0]
}

func TestFox_PicksFromResults(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("SearchGifs", mock.Anything, "fox", 50).Return([]string{"https://a.gif", "https://b.gif"}, nil)

	out, err := foxRoute(t, New(searcher, lastRand{})).Handle(context.Background(), router.Invocation{})
	require.NoError(t, err)
	assert.Equal(t, "https://b.gif", out)
	searcher.AssertExpectations(t)
}

func TestFox_FailuresUseFallback(t *testing.T) {
	t.Run("search error", func(t *testing.T) {
		searcher := new(mockSearcher)
		searcher.On("SearchGifs", mock.Anything, "fox", 50).Return(nil, errors.New("503"))

		_, err := foxRoute(t, New(searcher, lastRand{})).Handle(context.Background(), router.Invocation{})
		assert.Error(t, err)
	})

	t.Run("empty results", func(t *testing.T) {
		searcher := new(mockSearcher)
		searcher.On("SearchGifs", mock.Anything, "fox", 50).Return([]string{}, nil)

		_, err := foxRoute(t, New(searcher, lastRand{})).Handle(context.Background(), router.Invocation{})
		assert.ErrorIs(t, err, errNoResults)
	})
}

func TestFox_NoSearcher(t *testing.T) {
	out, err := foxRoute(t, New(nil, nil)).Handle(context.Background(), router.Invocation{})
	require.NoError(t, err)
	assert.Equal(t, DefaultFoxGIF, out)
}
