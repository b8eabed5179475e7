package rolesync

import (
	"fmt"
	"strings"
)

// EmojiRole pairs a custom emoji name with the role it grants.
type EmojiRole struct {
	Emoji string
	Role  string
	Label string
}

// Binding ties a bot-authored message, recognized by its content, to a fixed
// emoji to role table.
type Binding struct {
	Name string

	// Trigger is the exact admin message that provisions this binding
	Trigger string

	Matches func(content string) bool
	Roles   []EmojiRole

	// Render builds the binding message from emoji markup, in Roles order
	Render func(markup []string) string
}

// RoleFor returns the role name bound to an emoji key, or "".
func (b *Binding) RoleFor(emojiKey string) string {
	if emojiKey == "" {
		return ""
	}
	for _, er := range b.Roles {
		if er.Emoji == emojiKey {
			return er.Role
		}
	}
	return ""
}

const (
	PronounMarker = "Assign yourself Pronouns"
	EventMarker   = "role for event notifications"
)

// DefaultBindings returns the pronoun and event notification bindings.
func DefaultBindings() []*Binding {
	pronouns := &Binding{
		Name:    "pronouns",
		Trigger: "assignrole:gender",
		Matches: func(content string) bool {
			return strings.HasPrefix(content, PronounMarker)
		},
		Roles: []EmojiRole{
			{Emoji: "justaboy", Role: "he/him", Label: "He/Him"},
			{Emoji: "justagirl", Role: "she/her", Label: "She/Her"},
			{Emoji: "pridejj", Role: "they/them", Label: "They/Them"},
		},
	}
	pronouns.Render = func(markup []string) string {
		var sb strings.Builder
		sb.WriteString(PronounMarker)
		for i, er := range pronouns.Roles {
			fmt.Fprintf(&sb, "\n%s %s", markup[i], er.Label)
		}
		return sb.String()
	}

	events := &Binding{
		Name:    "fc-events",
		Trigger: "assignrole:fcevents",
		Matches: func(content string) bool {
			return strings.Contains(content, EventMarker)
		},
		Roles: []EmojiRole{
			{Emoji: "danseparty", Role: "FC Events"},
		},
	}
	events.Render = func(markup []string) string {
		return fmt.Sprintf("React with %s to get the '%s' %s!", markup[0], events.Roles[0].Role, EventMarker)
	}

	return []*Binding{pronouns, events}
}
