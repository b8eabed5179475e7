package help

import (
	"context"
	"fmt"
	"strings"

	"nuggies/bot/router"
)

// Lister exposes the registered commands
type Lister interface {
	Routes() []router.Route
}

type Feature struct {
	commands Lister
}

func New(commands Lister) *Feature {
	return &Feature{commands: commands}
}

func (f *Feature) Routes() []router.Route {
	return []router.Route{
		{
			Name:        "help",
			Description: "List everything Nuggies can do",
			Effect:      router.EffectStatic,
			Handle:      f.handleHelp,
		},
	}
}

func (f *Feature) handleHelp(_ context.Context, _ router.Invocation) (string, error) {
	return Render(f.commands.Routes()), nil
}

// Render builds the help text from the command table
func Render(routes []router.Route) string {
	var b strings.Builder
	b.WriteString("**Nuggies commands**\n")
	for _, r := range routes {
		b.WriteString("`/")
		b.WriteString(r.Name)
		for _, opt := range r.Options {
			if opt.Required {
				fmt.Fprintf(&b, " <%s>", opt.Name)
			} else {
				fmt.Fprintf(&b, " [%s]", opt.Name)
			}
		}
		b.WriteString("` ")
		b.WriteString(r.Description)
		b.WriteString("\n")
	}
	b.WriteString("\nMention nuggies in any message to chat, or say istanbul.")
	return b.String()
}
