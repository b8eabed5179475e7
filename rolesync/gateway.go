package rolesync

import (
	"context"
	"fmt"
)

// Gateway is the slice of the chat platform the role engine needs.
type Gateway interface {
	// SelfID is the bot's own user id, known once the session is ready
	SelfID() string

	User(ctx context.Context, userID string) (*User, error)
	ChannelMessage(ctx context.Context, channelID, messageID string) (*Message, error)
	SendMessage(ctx context.Context, channelID, content string) (*Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID string, emoji Emoji) error

	GuildEmojis(ctx context.Context, guildID string) ([]Emoji, error)
	GuildRoles(ctx context.Context, guildID string) ([]Role, error)
	CreateRole(ctx context.Context, guildID, name string, mentionable bool) (*Role, error)
	DeleteRole(ctx context.Context, guildID, roleID string) error
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error
}

type User struct {
	ID       string
	Username string
	Bot      bool
}

type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
}

type Role struct {
	ID   string
	Name string
}

// Emoji is a reaction or guild emoji. Unicode emoji have no ID.
type Emoji struct {
	ID       string
	Name     string
	Animated bool
}

// Key identifies a custom emoji by name; unicode emoji never match a binding.
func (e Emoji) Key() string {
	if e.ID == "" {
		return ""
	}
	return e.Name
}

// Markup renders the emoji inline in message content.
func (e Emoji) Markup() string {
	if e.ID == "" {
		return e.Name
	}
	if e.Animated {
		return fmt.Sprintf("<a:%s:%s>", e.Name, e.ID)
	}
	return fmt.Sprintf("<:%s:%s>", e.Name, e.ID)
}

// Reaction is a single reaction add or remove event.
type Reaction struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     Emoji
	Added     bool
}
