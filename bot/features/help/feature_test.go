package help

import (
	"context"
	"testing"

	"nuggies/bot/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []router.Route

func (s staticLister) Routes() []router.Route { return s }

func TestRender(t *testing.T) {
	routes := staticLister{
		{Name: "daily", Description: "Claim your daily nuggets"},
		{Name: "translate", Description: "Translate text", Options: []router.Option{
			{Name: "language", Required: true},
			{Name: "text", Required: true},
		}},
		{Name: "x", Description: "opt", Options: []router.Option{{Name: "maybe"}}},
	}

	out, err := New(routes).Routes()[0].Handle(context.Background(), router.Invocation{})
	require.NoError(t, err)

	assert.Contains(t, out, "`/daily` Claim your daily nuggets\n")
	assert.Contains(t, out, "`/translate <language> <text>` Translate text\n")
	assert.Contains(t, out, "`/x [maybe]` opt\n")
}
