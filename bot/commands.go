package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"nuggies/bot/router"
)

// applicationCommands converts the route table into slash command definitions.
// Every option is a string; required options come first as Discord demands.
func applicationCommands(routes []router.Route) []*discordgo.ApplicationCommand {
	commands := make([]*discordgo.ApplicationCommand, 0, len(routes))
	for _, route := range routes {
		cmd := &discordgo.ApplicationCommand{
			Name:        route.Name,
			Description: route.Description,
		}
		for _, required := range []bool{true, false} {
			for _, opt := range route.Options {
				if opt.Required != required {
					continue
				}
				cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        opt.Name,
					Description: opt.Description,
					Required:    opt.Required,
				})
			}
		}
		commands = append(commands, cmd)
	}
	return commands
}

// registerCommands replaces the global command set with the router's routes
func (b *Bot) registerCommands(ctx context.Context, appID string) error {
	commands := applicationCommands(b.router.Routes())
	_, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("cannot register %d commands: %w", len(commands), err)
	}
	return nil
}

// invocationFrom extracts a router invocation from a slash command
func invocationFrom(i *discordgo.InteractionCreate) router.Invocation {
	data := i.ApplicationCommandData()

	inv := router.Invocation{
		Command:   data.Name,
		Options:   make(map[string]string, len(data.Options)),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		inv.UserID = i.Member.User.ID
	case i.User != nil:
		inv.UserID = i.User.ID
	}

	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			inv.Options[opt.Name] = opt.StringValue()
		} else {
			inv.Options[opt.Name] = fmt.Sprint(opt.Value)
		}
	}
	return inv
}
