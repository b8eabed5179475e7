package router

import (
	"context"
	"strings"
)

// Effect classifies what a command does downstream.
type Effect string

const (
	EffectAIChat      Effect = "ai-chat"
	EffectTranslate   Effect = "translate"
	EffectMediaSearch Effect = "media-search"
	EffectEconomy     Effect = "economy"
	EffectStatic      Effect = "static"
)

// UnknownCommand is the reply to any command name without a route.
const UnknownCommand = "Unknown command."

// Option describes one string parameter of a command.
type Option struct {
	Name        string
	Description string
	Required    bool
}

// Invocation is one slash command call.
type Invocation struct {
	TaskID    string
	Command   string
	Options   map[string]string
	UserID    string
	GuildID   string
	ChannelID string
}

// Option returns the trimmed value of a parameter, or "".
func (inv Invocation) Option(name string) string {
	return strings.TrimSpace(inv.Options[name])
}

// HandlerFunc computes the final response text of a command.
type HandlerFunc func(ctx context.Context, inv Invocation) (string, error)

// Route binds a command name to its handler.
type Route struct {
	Name        string
	Description string
	Effect      Effect
	Options     []Option

	// Prompt replaces the handler when a required option is missing
	Prompt string

	// Fallback is sent when the handler fails, panics or times out
	Fallback string

	Handle HandlerFunc
}

func (r Route) missingRequired(inv Invocation) bool {
	for _, opt := range r.Options {
		if opt.Required && inv.Option(opt.Name) == "" {
			return true
		}
	}
	return false
}
