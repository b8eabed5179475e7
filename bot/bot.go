package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"nuggies/bot/common"
	"nuggies/bot/features/assistant"
	"nuggies/bot/features/economy"
	"nuggies/bot/features/help"
	"nuggies/bot/features/media"
	"nuggies/bot/router"
	"nuggies/events"
	"nuggies/infrastructure"
	"nuggies/rolesync"
	"nuggies/service"

	"github.com/bwmarrin/discordgo"
)

// shutdownGrace bounds how long Close waits for in-flight tasks
const shutdownGrace = 15 * time.Second

// Config holds bot configuration
type Config struct {
	Token               string
	AdminDiscordID      int64
	UpstreamTimeout     time.Duration
	MaxConcurrentTasks  int64
	ConstantinopleImage string
}

// Dependencies are the ports the bot's features run against. AI and Gifs
// may be nil when their API keys are not configured.
type Dependencies struct {
	Economy  service.EconomyService
	AI       assistant.Completer
	Gifs     media.GifSearcher
	EventBus *events.Bus
	Rand     service.Rand
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	gateway  *infrastructure.DiscordGateway
	router   *router.Router
	roles    *rolesync.Engine
	triggers *TriggerSet

	ctx    context.Context
	cancel context.CancelFunc
}

func New(config Config, deps Dependencies) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	gateway := infrastructure.NewDiscordGateway(dg)
	bot := newBot(config, deps, dg, gateway)

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleInteraction)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleReactionAdd)
	dg.AddHandler(bot.handleReactionRemove)

	if deps.EventBus != nil {
		subscribeAudit(deps.EventBus)
	}

	// Open websocket connection
	if err := dg.Open(); err != nil {
		bot.cancel()
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	return bot, nil
}

// newBot assembles routes, triggers and the role engine without touching the network
func newBot(config Config, deps Dependencies, session *discordgo.Session, gateway *infrastructure.DiscordGateway) *Bot {
	ctx, cancel := context.WithCancel(context.Background())

	r := router.New(router.Config{
		Timeout:       config.UpstreamTimeout,
		MaxConcurrent: config.MaxConcurrentTasks,
	})
	ai := assistant.New(deps.AI)
	for _, route := range ai.Routes() {
		r.Register(route)
	}
	for _, route := range economy.New(deps.Economy, deps.Rand).Routes() {
		r.Register(route)
	}
	for _, route := range media.New(deps.Gifs, deps.Rand).Routes() {
		r.Register(route)
	}
	for _, route := range help.New(r).Routes() {
		r.Register(route)
	}

	roles := rolesync.NewEngine(gateway, rolesync.DefaultBindings())

	return &Bot{
		config:  config,
		session: session,
		gateway: gateway,
		router:  r,
		roles:   roles,
		triggers: newTriggerSet(triggerDeps{
			adminID:   config.AdminDiscordID,
			imagePath: config.ConstantinopleImage,
			selfID:    gateway.SelfID,
			messenger: gateway,
			roles:     roles,
			assistant: ai,
		}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close disconnects from the gateway, then waits for running tasks
func (b *Bot) Close() error {
	err := b.session.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if serr := b.router.Shutdown(shutdownCtx); serr != nil {
		log.WithError(serr).Warn("Abandoning in-flight tasks")
	}
	b.cancel()

	return err
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")

	b.router.Go(b.ctx, "register-commands", func(ctx context.Context) {
		if err := b.registerCommands(ctx, r.User.ID); err != nil {
			log.WithError(err).Error("Error registering commands")
			return
		}
		log.Info("Successfully registered global application commands")
	})
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.router.Dispatch(b.ctx, invocationFrom(i), common.NewInteractionResponder(s, i.Interaction))
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	b.onMessage(IncomingMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		AuthorID:  m.Author.ID,
		AuthorBot: m.Author.Bot,
		Content:   m.Content,
	})
}

func (b *Bot) onMessage(msg IncomingMessage) *router.Task {
	trigger := b.triggers.Match(msg)
	if trigger == nil {
		return nil
	}
	return b.router.Go(b.ctx, "trigger:"+trigger.Name, func(ctx context.Context) {
		if err := trigger.Handle(ctx, msg); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"trigger":    trigger.Name,
				"channel_id": msg.ChannelID,
			}).Error("Message trigger failed")
		}
	})
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.onReaction(toReaction(r.MessageReaction, true))
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.onReaction(toReaction(r.MessageReaction, false))
}

func (b *Bot) onReaction(reaction rolesync.Reaction) *router.Task {
	return b.router.Go(b.ctx, "reaction", func(ctx context.Context) {
		outcome := b.roles.HandleReaction(ctx, reaction)
		log.WithFields(log.Fields{
			"message_id": reaction.MessageID,
			"user_id":    reaction.UserID,
			"emoji":      reaction.Emoji.Name,
			"added":      reaction.Added,
			"outcome":    outcome,
		}).Debug("Handled reaction")
	})
}

func toReaction(r *discordgo.MessageReaction, added bool) rolesync.Reaction {
	return rolesync.Reaction{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     infrastructure.ToEmoji(r.Emoji),
		Added:     added,
	}
}
