package infrastructure

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"

	"nuggies/rolesync"
)

// DiscordGateway adapts a discordgo session to the ports used by the role
// engine and the message triggers.
type DiscordGateway struct {
	session *discordgo.Session
}

func NewDiscordGateway(session *discordgo.Session) *DiscordGateway {
	return &DiscordGateway{session: session}
}

func (g *DiscordGateway) SelfID() string {
	if g.session.State == nil || g.session.State.User == nil {
		return ""
	}
	return g.session.State.User.ID
}

func (g *DiscordGateway) User(ctx context.Context, userID string) (*rolesync.User, error) {
	u, err := g.session.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}
	return &rolesync.User{ID: u.ID, Username: u.Username, Bot: u.Bot}, nil
}

func (g *DiscordGateway) ChannelMessage(ctx context.Context, channelID, messageID string) (*rolesync.Message, error) {
	m, err := g.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	return toMessage(m), nil
}

func (g *DiscordGateway) SendMessage(ctx context.Context, channelID, content string) (*rolesync.Message, error) {
	m, err := g.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send message to %s: %w", channelID, err)
	}
	return toMessage(m), nil
}

// SendFile posts content with a single attachment
func (g *DiscordGateway) SendFile(ctx context.Context, channelID, content, name string, r io.Reader) error {
	_, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Files:   []*discordgo.File{{Name: name, Reader: r}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send file to %s: %w", channelID, err)
	}
	return nil
}

// Typing shows the typing indicator until the next message is sent
func (g *DiscordGateway) Typing(ctx context.Context, channelID string) error {
	return g.session.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

func (g *DiscordGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return g.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (g *DiscordGateway) AddReaction(ctx context.Context, channelID, messageID string, emoji rolesync.Emoji) error {
	return g.session.MessageReactionAdd(channelID, messageID, reactionID(emoji), discordgo.WithContext(ctx))
}

func (g *DiscordGateway) GuildEmojis(ctx context.Context, guildID string) ([]rolesync.Emoji, error) {
	emojis, err := g.session.GuildEmojis(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list emojis of %s: %w", guildID, err)
	}
	out := make([]rolesync.Emoji, 0, len(emojis))
	for _, e := range emojis {
		out = append(out, rolesync.Emoji{ID: e.ID, Name: e.Name, Animated: e.Animated})
	}
	return out, nil
}

func (g *DiscordGateway) GuildRoles(ctx context.Context, guildID string) ([]rolesync.Role, error) {
	roles, err := g.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list roles of %s: %w", guildID, err)
	}
	out := make([]rolesync.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, rolesync.Role{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

func (g *DiscordGateway) CreateRole(ctx context.Context, guildID, name string, mentionable bool) (*rolesync.Role, error) {
	r, err := g.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create role %q: %w", name, err)
	}
	return &rolesync.Role{ID: r.ID, Name: r.Name}, nil
}

func (g *DiscordGateway) DeleteRole(ctx context.Context, guildID, roleID string) error {
	return g.session.GuildRoleDelete(guildID, roleID, discordgo.WithContext(ctx))
}

func (g *DiscordGateway) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (g *DiscordGateway) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func toMessage(m *discordgo.Message) *rolesync.Message {
	msg := &rolesync.Message{ID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	return msg
}

// reactionID is the name:id form the reactions endpoint expects for custom
// emoji; unicode emoji are sent as is.
func reactionID(e rolesync.Emoji) string {
	if e.ID == "" {
		return e.Name
	}
	return e.Name + ":" + e.ID
}

// ToEmoji converts a gateway reaction emoji
func ToEmoji(e discordgo.Emoji) rolesync.Emoji {
	return rolesync.Emoji{ID: e.ID, Name: e.Name, Animated: e.Animated}
}
